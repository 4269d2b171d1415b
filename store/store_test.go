package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/Amansingh-afk/nanoedge/hdc"
	"github.com/Amansingh-afk/nanoedge/memory"
	"github.com/Amansingh-afk/nanoedge/store"
)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patterns.db")
	logger, _ := test.NewNullLogger()
	s, err := store.Open(path, logger)
	require.NoError(t, err)
	return s, path
}

func TestStore_EmptyLoad(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	entries, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, path := openStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)
	in := []memory.Entry{
		{ID: uuid.New(), Label: "zeta", Vector: hdc.Random(1), Count: 3, UpdatedAt: now},
		{ID: uuid.New(), Label: "alpha", Vector: hdc.Ones(), Count: 1, UpdatedAt: now.Add(-time.Minute)},
		{ID: uuid.New(), Label: "mid", Vector: hdc.Vector{}, Count: 9, UpdatedAt: now.Add(-time.Hour)},
	}
	require.NoError(t, s.Save(in))
	require.NoError(t, s.Close())

	// reopen to prove the data is on disk
	s2, err := store.Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, path, s2.Path())

	out, err := s2.Load()
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Label, out[i].Label, "recency order must survive")
		assert.Equal(t, in[i].Vector, out[i].Vector)
		assert.Equal(t, in[i].Count, out[i].Count)
		assert.True(t, in[i].UpdatedAt.Equal(out[i].UpdatedAt))
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	require.NoError(t, s.Save([]memory.Entry{
		{ID: uuid.New(), Label: "a", Vector: hdc.Random(1)},
		{ID: uuid.New(), Label: "b", Vector: hdc.Random(2)},
	}))
	require.NoError(t, s.Save([]memory.Entry{
		{ID: uuid.New(), Label: "c", Vector: hdc.Random(3)},
	}))

	out, err := s.Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Label)
}

func TestStore_MemoryRoundTrip(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	m := memory.New(memory.DefaultOptions())
	m.Learn("good", hdc.EncodeADC(100))
	m.Learn("bad", hdc.EncodeADC(900))
	require.NoError(t, s.Save(m.Snapshot()))

	restored := memory.New(memory.DefaultOptions())
	entries, err := s.Load()
	require.NoError(t, err)
	restored.Restore(entries)

	assert.Equal(t, m.Labels(), restored.Labels())
	label, ok, _ := restored.Match(hdc.EncodeADC(110))
	require.True(t, ok)
	assert.Equal(t, "good", label)
}

func TestStore_RejectsBadRecords(t *testing.T) {
	cases := map[string]any{
		"wrong version": map[string]any{
			"version": 99, "id": uuid.NewString(), "label": "x", "vector": make([]byte, hdc.Bytes),
		},
		"short vector": map[string]any{
			"version": store.RecordVersion, "id": uuid.NewString(), "label": "x", "vector": []byte{1, 2},
		},
		"bad id": map[string]any{
			"version": store.RecordVersion, "id": "nope", "label": "x", "vector": make([]byte, hdc.Bytes),
		},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			s, path := openStore(t)
			require.NoError(t, s.Close())
			writeRaw(t, path, rec)

			s, err := store.Open(path, nil)
			require.NoError(t, err)
			defer s.Close()
			_, err = s.Load()
			assert.Error(t, err)
		})
	}
}

func TestOpen_BadPath(t *testing.T) {
	_, err := store.Open(filepath.Join(t.TempDir(), "missing", "dir", "x.db"), nil)
	assert.Error(t, err)
}

func writeRaw(t *testing.T, path string, rec any) {
	t.Helper()
	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	defer db.Close()
	data, err := msgpack.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("patterns")).Put([]byte("x"), data)
	}))
}
