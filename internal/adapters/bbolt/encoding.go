// Key and value encoding for journal buckets.
//
// Event keys are the 8-byte big-endian sequence number so that cursor order
// equals append order. Values are JSON-encoded ports.JournalEntry.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/corey/cfk/internal/ports"
)

// seqKey encodes a sequence number as a sortable key.
func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// keySeq decodes a key written by seqKey.
func keySeq(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("bad sequence key length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func encodeEntry(e ports.JournalEntry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal entry: %w", err)
	}
	return data, nil
}

// decodeEntry copies nothing: json.Unmarshal does not retain v, so it is safe
// to call inside a transaction.
func decodeEntry(v []byte) (ports.JournalEntry, error) {
	var e ports.JournalEntry
	if err := json.Unmarshal(v, &e); err != nil {
		return ports.JournalEntry{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return e, nil
}
