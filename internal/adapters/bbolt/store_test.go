package bbolt

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/cfk/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func entry(lib, action, state string) ports.JournalEntry {
	return ports.JournalEntry{
		Library: lib,
		Action:  action,
		Scope:   "builtin",
		State:   state,
		At:      time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
	}
}

func TestAppend_AssignsSequence(t *testing.T) {
	store, _ := newTestStore(t)

	seq, err := store.Append("default", entry("cf3.mesh", "register", "registered"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)

	seq, err = store.Append("default", entry("cf3.mesh", "initiate", "initiated"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)

	// Sequences are per profile.
	seq, err = store.Append("other", entry("cf3.mesh", "register", "registered"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestAppend_RejectsEmptyProfile(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Append("", entry("cf3.mesh", "register", "registered"))
	assert.Error(t, err)
}

func TestEntries_NewestFirstWithLimit(t *testing.T) {
	store, _ := newTestStore(t)
	for _, a := range []string{"register", "initiate", "terminate"} {
		_, err := store.Append("default", entry("cf3.mesh", a, a+"d"))
		require.NoError(t, err)
	}

	all, err := store.Entries("default", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "terminate", all[0].Action)
	assert.Equal(t, uint64(3), all[0].Seq)
	assert.Equal(t, "register", all[2].Action)
	assert.True(t, all[2].At.Equal(time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)))

	two, err := store.Entries("default", 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "initiate", two[1].Action)
}

func TestEntries_UnknownProfile(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.Entries("nope", 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshot_LatestPerLibrary(t *testing.T) {
	store, _ := newTestStore(t)
	_, _ = store.Append("default", entry("cf3.mesh", "register", "registered"))
	_, _ = store.Append("default", entry("cf3.physics", "register", "registered"))
	_, _ = store.Append("default", entry("cf3.mesh", "initiate", "initiated"))

	snap, err := store.Snapshot("default")
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "initiated", snap["cf3.mesh"].State)
	assert.Equal(t, uint64(3), snap["cf3.mesh"].Seq)
	assert.Equal(t, "registered", snap["cf3.physics"].State)

	empty, err := store.Snapshot("nope")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteProfile_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	_, _ = store.Append("default", entry("cf3.mesh", "register", "registered"))
	_, _ = store.Append("other", entry("cf3.mesh", "register", "registered"))

	require.NoError(t, store.DeleteProfile("default"))
	require.NoError(t, store.DeleteProfile("default"))

	got, err := store.Entries("default", 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	profiles, err := store.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, profiles)
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	store, path := newTestStore(t)
	_, err := store.Append("default", entry("cf3.mesh", "initiate", "initiated"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Entries("default", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cf3.mesh", got[0].Library)
	assert.Equal(t, path, reopened.Path())

	seq, err := reopened.Append("default", entry("cf3.mesh", "terminate", "terminated"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	store, _ := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Append("default", entry(fmt.Sprintf("cf3.lib%d", i), "register", "registered"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := store.Entries("default", 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)
	seen := make(map[uint64]bool)
	for _, e := range all {
		seen[e.Seq] = true
	}
	assert.Len(t, seen, 10)
}

func TestSeqKey_RoundTripOrder(t *testing.T) {
	a, b := seqKey(9), seqKey(10)
	assert.Equal(t, -1, bytes.Compare(a, b))
	v, err := keySeq(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
	_, err = keySeq([]byte{1, 2})
	assert.Error(t, err)
}
