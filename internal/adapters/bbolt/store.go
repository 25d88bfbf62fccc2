// Package bbolt implements the ports.Journal interface using bbolt (embedded B+ tree).
// Each kernel profile gets its own top-level bucket. Within that bucket, "events"
// holds the append-only lifecycle log and "latest" the most recent entry per
// library. Writes are transactional: a crash mid-write cannot corrupt
// previously committed data.
package bbolt

import (
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/cfk/internal/ports"
)

// Bucket keys
var (
	bucketEvents = []byte("events")
	bucketLatest = []byte("latest")
)

// Store implements ports.Journal backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.Journal = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Append records entry under profile. The entry's Seq is assigned here.
func (s *Store) Append(profile string, entry ports.JournalEntry) (uint64, error) {
	if profile == "" {
		return 0, fmt.Errorf("empty profile")
	}
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		prof, err := tx.CreateBucketIfNotExists([]byte(profile))
		if err != nil {
			return err
		}
		eb, err := prof.CreateBucketIfNotExists(bucketEvents)
		if err != nil {
			return err
		}
		lb, err := prof.CreateBucketIfNotExists(bucketLatest)
		if err != nil {
			return err
		}
		seq, err = eb.NextSequence()
		if err != nil {
			return err
		}
		entry.Seq = seq
		data, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		if err := eb.Put(seqKey(seq), data); err != nil {
			return err
		}
		return lb.Put([]byte(entry.Library), data)
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Entries returns up to limit entries for profile, newest first.
// Returns nil, nil if the profile has no entries.
func (s *Store) Entries(profile string, limit int) ([]ports.JournalEntry, error) {
	var out []ports.JournalEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		prof := tx.Bucket([]byte(profile))
		if prof == nil {
			return nil
		}
		eb := prof.Bucket(bucketEvents)
		if eb == nil {
			return nil
		}
		c := eb.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			if _, err := keySeq(k); err != nil {
				return err
			}
			e, err := decodeEntry(v)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot returns the latest entry per library for profile.
func (s *Store) Snapshot(profile string) (map[string]ports.JournalEntry, error) {
	out := make(map[string]ports.JournalEntry)
	err := s.db.View(func(tx *bolt.Tx) error {
		prof := tx.Bucket([]byte(profile))
		if prof == nil {
			return nil
		}
		lb := prof.Bucket(bucketLatest)
		if lb == nil {
			return nil
		}
		return lb.ForEach(func(k, v []byte) error {
			e, err := decodeEntry(v)
			if err != nil {
				return err
			}
			out[string(k)] = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProfile removes all entries for profile.
// Idempotent: deleting a nonexistent profile is not an error.
func (s *Store) DeleteProfile(profile string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(profile)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		} else {
			return err
		}
	})
}

// Profiles lists top-level profile buckets, sorted.
func (s *Store) Profiles() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
