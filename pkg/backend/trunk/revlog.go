package trunk

import (
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

const (
	headKey   = "head"
	revPrefix = "rev/"
	tagPrefix = "tag/"
)

// revlog records revisions and tags in a badger key-value store
type revlog struct {
	db *badger.DB
}

func revKey(n uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", revPrefix, n))
}

func tagKey(name string) []byte {
	return []byte(tagPrefix + name)
}

// badgerLogger routes badger logs to zap
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

func openRevlog(pth string, inMemory bool, l *zap.Logger) (*revlog, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(pth, 0700); err != nil {
			return nil, fmt.Errorf("revision log: mkdir: %w", err)
		}
		opts = badger.DefaultOptions(pth)
	}
	opts = opts.WithLogger(badgerLogger{SugaredLogger: l.With(zap.String("revlog", pth)).Sugar()}).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &revlog{db: db}, nil
}

func (r *revlog) head() (*model.HeadDescriptor, error) {
	var head model.HeadDescriptor
	found, err := r.get([]byte(headKey), &head)
	if err != nil || !found {
		return nil, err
	}
	return &head, nil
}

func (r *revlog) get(key []byte, v interface{}) (bool, error) {
	var value []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, e := txn.Get(key)
		if e != nil {
			return e
		}
		value, e = item.ValueCopy(nil)
		return e
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, yaml.Unmarshal(value, v)
}

// set writes several keys in one transaction, retrying on conflicts
func (r *revlog) set(kv map[string]interface{}) error {
	values := make(map[string][]byte, len(kv))
	for k, v := range kv {
		buf, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		values[k] = buf
	}

	return backoff.Retry(func() error {
		return retryOnConflict(r.db.Update(func(txn *badger.Txn) error {
			for k, v := range values {
				if e := txn.Set([]byte(k), v); e != nil {
					return e
				}
			}
			return nil
		}))
	},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 10),
	)
}

// retryOnConflict marks every error but a transaction conflict as permanent.
// Conflicts are reported when the transaction commits.
func retryOnConflict(err error) error {
	if err == nil || errors.Is(err, badger.ErrConflict) {
		return err
	}
	return backoff.Permanent(err)
}

// commit records a new revision and moves the head
func (r *revlog) commit(desc model.CommitDescriptor, head model.HeadDescriptor) error {
	return r.set(map[string]interface{}{
		string(revKey(head.Count)): desc,
		headKey:                    head,
	})
}

func (r *revlog) tag(desc model.TagDescriptor) error {
	return r.set(map[string]interface{}{
		string(tagKey(desc.Name)): desc,
	})
}

// scan iterates over all values under a prefix, in key order
func (r *revlog) scan(prefix string, fn func([]byte) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchSize:   100,
			PrefetchValues: true,
			Prefix:         []byte(prefix),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			if err = fn(value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *revlog) drop() error {
	return r.db.DropAll()
}

func (r *revlog) close() error {
	return r.db.Close()
}
