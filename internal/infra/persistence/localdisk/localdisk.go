// Package localdisk contains the file-backed implementation of the
// durable store contract: one file per key under a single directory.
// Mutations performed by other processes on the same directory surface
// through a filesystem watcher as ordinary storage events, which is what
// makes cross-process tampering observable at all.
package localdisk

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"finboard/internal/domain/repository"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const tmpSuffix = ".tmp"

// Store implements repository.KeyValue on top of a directory.
type Store struct {
	dir     string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	subs   map[int]chan repository.Event
	nextID int
	closed bool
}

// New opens (creating if needed) the store directory and starts the
// change watcher. Callers must Close the store to release the watcher.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create store directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fs watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()

		return nil, errors.Wrap(err, "watch store directory")
	}

	store := &Store{
		dir:     dir,
		logger:  logger,
		watcher: watcher,
		subs:    make(map[int]chan repository.Event),
	}
	go store.watch()

	return store, nil
}

// Get returns the value stored under key, or repository.ErrKeyNotFound.
func (s *Store) Get(key string) (string, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", repository.ErrKeyNotFound
		}

		return "", errors.Wrapf(err, "read key %s", key)
	}

	return string(raw), nil
}

// Set writes value under key. The write goes through a temp file and a
// rename so concurrent readers never observe a partial value.
func (s *Store) Set(key, value string) error {
	target := s.path(key)
	tmp := target + tmpSuffix

	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return errors.Wrapf(err, "write key %s", key)
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.Wrapf(err, "commit key %s", key)
	}

	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove key %s", key)
	}

	return nil
}

// Clear wipes every key in the store directory.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrap(err, "list store directory")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", entry.Name())
		}
	}

	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.path(key))

	return err == nil
}

// Subscribe registers a listener for storage events. Events are derived
// from the filesystem watcher, so both this process's writes and external
// ones are reported; listeners must tolerate duplicates.
func (s *Store) Subscribe(buffer int) (<-chan repository.Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan repository.Event, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}

	return ch, cancel
}

// Close stops the watcher and closes all subscriptions.
func (s *Store) Close() error {
	err := s.watcher.Close()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for id, sub := range s.subs {
			delete(s.subs, id)
			close(sub)
		}
	}
	s.mu.Unlock()

	return err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key))
}

func (s *Store) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.translate(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("storage watcher error", slog.Any("error", err))
		}
	}
}

// translate maps one filesystem event onto the storage event stream.
func (s *Store) translate(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, tmpSuffix) {
		return
	}
	key, err := url.PathUnescape(name)
	if err != nil {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		s.publish(repository.Event{Op: repository.OpSet, Key: key})
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		s.publish(repository.Event{Op: repository.OpRemove, Key: key})
	}
}

func (s *Store) publish(event repository.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
