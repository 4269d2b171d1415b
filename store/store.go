// Package store persists a pattern memory in a bbolt file.
// Each label is one msgpack record in the "patterns" bucket.
package store

import (
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/Amansingh-afk/nanoedge/hdc"
	"github.com/Amansingh-afk/nanoedge/memory"
)

const (
	patternsBucket = "patterns"

	// RecordVersion is the serialization version written by Save.
	RecordVersion = 1
)

// record is the on-disk form of a memory.Entry.
type record struct {
	Version   uint32    `msgpack:"version"`
	ID        string    `msgpack:"id"`
	Label     string    `msgpack:"label"`
	Vector    []byte    `msgpack:"vector"`
	Count     uint64    `msgpack:"count"`
	UpdatedAt time.Time `msgpack:"updated_at"`
	Rank      uint32    `msgpack:"rank"` // position in recency order, 0 = most recent
}

// Store is a bbolt-backed pattern store. It is safe for concurrent use.
type Store struct {
	db     *bolt.DB
	path   string
	logger logrus.FieldLogger
}

// Open opens or creates the store file at path.
func Open(path string, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(patternsBucket))
		return errors.Wrap(err, "create bucket")
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init patterns bucket")
	}

	return &Store{
		db:     db,
		path:   path,
		logger: logger.WithField("component", "store"),
	}, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string { return s.path }

// Save replaces the stored patterns with entries in a single transaction.
// Entries are expected in recency order, most recent first.
func (s *Store) Save(entries []memory.Entry) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(patternsBucket)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return errors.Wrap(err, "drop bucket")
		}
		b, err := tx.CreateBucket([]byte(patternsBucket))
		if err != nil {
			return errors.Wrap(err, "create bucket")
		}

		for i, e := range entries {
			data, err := msgpack.Marshal(&record{
				Version:   RecordVersion,
				ID:        e.ID.String(),
				Label:     e.Label,
				Vector:    e.Vector[:],
				Count:     e.Count,
				UpdatedAt: e.UpdatedAt,
				Rank:      uint32(i),
			})
			if err != nil {
				return errors.Wrapf(err, "marshal pattern %q", e.Label)
			}
			if err := b.Put([]byte(e.Label), data); err != nil {
				return errors.Wrapf(err, "put pattern %q", e.Label)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "save patterns")
	}

	s.logger.WithField("patterns", len(entries)).Debug("saved pattern memory")
	return nil
}

// Load returns the stored patterns, most recent first.
func (s *Store) Load() ([]memory.Entry, error) {
	var ranked []rankedEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(patternsBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			e, rank, err := decode(v)
			if err != nil {
				return errors.Wrapf(err, "pattern %q", k)
			}
			ranked = append(ranked, rankedEntry{entry: e, rank: rank})
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "load patterns")
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].rank < ranked[j].rank })
	entries := make([]memory.Entry, len(ranked))
	for i := range ranked {
		entries[i] = ranked[i].entry
	}
	s.logger.WithField("patterns", len(entries)).Debug("loaded pattern memory")
	return entries, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "close store")
}

func decode(data []byte) (memory.Entry, uint32, error) {
	var r record
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return memory.Entry{}, 0, errors.Wrap(err, "unmarshal")
	}
	if r.Version != RecordVersion {
		return memory.Entry{}, 0, errors.Errorf("unsupported record version %d", r.Version)
	}
	vec, err := hdc.FromBytes(r.Vector)
	if err != nil {
		return memory.Entry{}, 0, err
	}
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return memory.Entry{}, 0, errors.Wrap(err, "parse id")
	}
	return memory.Entry{
		ID:        id,
		Label:     r.Label,
		Vector:    vec,
		Count:     r.Count,
		UpdatedAt: r.UpdatedAt,
	}, r.Rank, nil
}

type rankedEntry struct {
	entry memory.Entry
	rank  uint32
}
