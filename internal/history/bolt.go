package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/comigor/schoolassist-go/internal/conversation"
)

// sessionsBucket holds one nested bucket per session; keys inside are
// big-endian sequence numbers so cursor order is insertion order.
var sessionsBucket = []byte("sessions")

// DefaultBoltPath is used when no path is configured.
const DefaultBoltPath = "history.bolt"

// Bolt stores transcripts in a single BoltDB file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the BoltDB file at path.
func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		path = DefaultBoltPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Append(_ context.Context, sessionID string, msg conversation.Message) (conversation.Message, error) {
	msg = prepare(msg)
	data, err := json.Marshal(msg)
	if err != nil {
		return conversation.Message{}, err
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket(sessionsBucket).CreateBucketIfNotExists([]byte(sessionID))
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, data)
	})
	if err != nil {
		return conversation.Message{}, fmt.Errorf("store message: %w", err)
	}
	return msg, nil
}

func (b *Bolt) List(_ context.Context, sessionID string) ([]conversation.Message, error) {
	var out []conversation.Message
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionsBucket).Bucket([]byte(sessionID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var m conversation.Message
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m)
			return nil
		})
	})
	return out, err
}

func (b *Bolt) Clear(_ context.Context, sessionID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(sessionsBucket)
		if sessions.Bucket([]byte(sessionID)) == nil {
			return nil
		}
		return sessions.DeleteBucket([]byte(sessionID))
	})
}

func (b *Bolt) Close() error { return b.db.Close() }
