// SPDX-License-Identifier: EPL-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audxf/serialize"
	"github.com/ik5/audxf/transform"
)

var (
	// ErrNotFound is returned when no transform is stored under a name.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidName is returned for empty names or names holding control
	// characters.
	ErrInvalidName = errors.New("store: invalid name")
)

var keyPrefix = []byte("transform/")

// Options configures Open.
type Options struct {
	// Dir holds the database files. Required unless InMemory is set.
	Dir string

	// InMemory keeps the library in memory only.
	InMemory bool

	// Logger receives badger's own messages. Nil routes warnings and
	// errors to the standard logrus logger.
	Logger badger.Logger
}

// Store is a library of named, exported transforms. It is safe for
// concurrent use.
type Store struct {
	db *badger.DB
}

// Entry describes one stored transform.
type Entry struct {
	Name        string
	Kind        transform.Kind
	Fingerprint string
}

// Open opens or creates a library.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("store: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(logrusLogger{entry: logrus.WithField("component", "badger")})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", opts.Dir, err)
	}
	return &Store{db: db}, nil
}

func key(name string) ([]byte, error) {
	if name == "" || strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return append(bytes.Clone(keyPrefix), name...), nil
}

// Put exports t and stores it under name, replacing any previous entry.
func (s *Store) Put(ctx context.Context, name string, t transform.Transform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := key(name)
	if err != nil {
		return err
	}
	data, err := serialize.Marshal(t)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, data)
	}); err != nil {
		return fmt.Errorf("store: put %q: %w", name, err)
	}
	logrus.WithFields(logrus.Fields{
		"name":  name,
		"kind":  t.Kind(),
		"bytes": len(data),
	}).Debug("transform stored")
	return nil
}

// Get rebuilds the transform stored under name.
func (s *Store) Get(ctx context.Context, name string) (transform.Transform, error) {
	data, err := s.GetBytes(ctx, name)
	if err != nil {
		return nil, err
	}
	t, err := serialize.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: %q: %w", name, err)
	}
	return t, nil
}

// GetBytes returns the encoding stored under name without decoding it.
func (s *Store) GetBytes(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := key(name)
	if err != nil {
		return nil, err
	}
	var val []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", name, err)
	}
	return val, nil
}

// Delete removes the transform stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := key(name)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			return err
		}
		return txn.Delete(k)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	return nil
}

// List returns the stored names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	for e, err := range s.Entries(ctx) {
		if err != nil {
			return nil, err
		}
		names = append(names, e.Name)
	}
	return names, nil
}

// Entries iterates the library in name order. Entries whose encoding
// cannot be read are yielded with an error.
func (s *Store) Entries(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(Entry{}, err)
			return
		}
		err := s.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = keyPrefix
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				item := it.Item()
				name := string(item.Key()[len(keyPrefix):])

				val, err := item.ValueCopy(nil)
				if err == nil {
					var sz serialize.Serialized
					if sz, err = serialize.FromBytes(val); err == nil {
						if !yield(Entry{Name: name, Kind: sz.Kind(), Fingerprint: sz.Fingerprint()}, nil) {
							return nil
						}
						continue
					}
				}
				if !yield(Entry{Name: name}, fmt.Errorf("store: %q: %w", name, err)) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// logrusLogger adapts logrus to badger, dropping info and debug messages.
type logrusLogger struct {
	entry *logrus.Entry
}

func (l logrusLogger) Errorf(f string, v ...any) {
	l.entry.Errorf(strings.TrimSuffix(f, "\n"), v...)
}

func (l logrusLogger) Warningf(f string, v ...any) {
	l.entry.Warnf(strings.TrimSuffix(f, "\n"), v...)
}

func (logrusLogger) Infof(string, ...any)  {}
func (logrusLogger) Debugf(string, ...any) {}
