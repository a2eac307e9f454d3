package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/inovacc/gitroster/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketRepos = "repositories" // key: zero-padded position -> Record JSON
	boltBucketMeta  = "meta"         // key: "saved" -> RFC 3339 time of the last Save
)

var boltKeySaved = []byte("saved")

// Bolt stores records in a bbolt database.
type Bolt struct {
	storage *bbolt.DB
	mu      sync.Mutex
}

// NewBolt opens (or creates) the database at path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, ioError("open", path, err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketRepos)); err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketMeta)); err != nil {
			return err
		}

		return nil
	}); err != nil {
		_ = instance.Close()

		return nil, ioError("initialize", path, err)
	}

	return &Bolt{storage: instance}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.storage.Close()
}

// Load returns records in saved order, or ErrNotFound if Save was never
// called on this database.
func (b *Bolt) Load() ([]model.Record, error) {
	var (
		out   = []model.Record{}
		saved bool
	)

	err := b.storage.View(func(tx *bbolt.Tx) error {
		saved = tx.Bucket([]byte(boltBucketMeta)).Get(boltKeySaved) != nil

		// Keys are fixed-width positions, so ForEach yields insertion order.
		return tx.Bucket([]byte(boltBucketRepos)).ForEach(func(_, v []byte) error {
			var r model.Record

			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			out = append(out, r)

			return nil
		})
	})
	if err != nil {
		return nil, ioError("read", b.storage.Path(), err)
	}

	if !saved {
		return nil, ErrNotFound
	}

	if err := validate(out); err != nil {
		return nil, ioError("decode", b.storage.Path(), err)
	}

	return out, nil
}

// Save replaces every record in one transaction.
func (b *Bolt) Save(records []model.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.storage.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(boltBucketRepos)); err != nil {
			return err
		}

		repos, err := tx.CreateBucket([]byte(boltBucketRepos))
		if err != nil {
			return err
		}

		for i, rec := range records {
			data, err := json.Marshal(&rec)
			if err != nil {
				return err
			}

			if err := repos.Put(positionKey(i), data); err != nil {
				return err
			}
		}

		return tx.Bucket([]byte(boltBucketMeta)).Put(boltKeySaved, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return ioError("write", b.storage.Path(), err)
	}

	return nil
}

// SavedAt returns the time recorded by the last Save.
func (b *Bolt) SavedAt() (time.Time, error) {
	var raw []byte

	err := b.storage.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(boltBucketMeta)).Get(boltKeySaved); v != nil {
			raw = append(raw, v...)
		}

		return nil
	})
	if err != nil {
		return time.Time{}, ioError("read", b.storage.Path(), err)
	}

	if raw == nil {
		return time.Time{}, ErrNotFound
	}

	savedAt, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, ioError("decode", b.storage.Path(), err)
	}

	return savedAt, nil
}

func positionKey(i int) []byte {
	return []byte(fmt.Sprintf("%08d", i))
}
