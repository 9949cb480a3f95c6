// Package store is the process-wide registry of open collections: it owns
// the data directory, lazily opens a collection's index and access store on
// first use, and keeps every collection open for the life of the process.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	golog "github.com/ipfs/go-log"

	"github.com/nla/cdxserver/access"
	"github.com/nla/cdxserver/index"
	"github.com/nla/cdxserver/query"
)

var log = golog.Logger("store")

// nameRE bounds collection names to what is safe to use as a filename
// component across platforms.
var nameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrBadName is returned when a collection name fails nameRE.
var ErrBadName = fmt.Errorf("collection name must match [A-Za-z0-9_-]+")

// collection bundles one collection's open index, access store, and query
// pipeline together so callers fetch all three with a single lookup.
type collection struct {
	Index    *index.Index
	Access   *access.Store
	Pipeline *query.Pipeline
}

// DataStore is the top-level, process-wide collection registry. It is safe
// for concurrent use.
type DataStore struct {
	dir                  string
	defaultAllow         bool
	accessControlEnabled bool

	mu   sync.RWMutex
	open map[string]*collection
}

// Open returns a DataStore rooted at dir, creating dir if it does not
// already exist. defaultAllow is the access decision used for collections
// with no matching access policy. accessControlEnabled mirrors
// config.Access.ExperimentalAccessControl: when false, every pipeline it
// opens allows every record through regardless of rules/policies on disk.
func Open(dir string, defaultAllow bool, accessControlEnabled bool) (*DataStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &DataStore{dir: dir, defaultAllow: defaultAllow, accessControlEnabled: accessControlEnabled, open: make(map[string]*collection)}, nil
}

// Get returns the Pipeline for name, lazily opening it (and creating its
// on-disk files) if createIfMissing is true and it is not already open.
// Opening is double-checked under a write lock so concurrent first-access
// requests for the same collection open it exactly once.
func (s *DataStore) Get(name string, createIfMissing bool) (*query.Pipeline, error) {
	c, err := s.getCollection(name, createIfMissing)
	if err != nil {
		return nil, err
	}
	return c.Pipeline, nil
}

// Access returns the access.Store for name, with the same lazy-open
// semantics as Get.
func (s *DataStore) Access(name string, createIfMissing bool) (*access.Store, error) {
	c, err := s.getCollection(name, createIfMissing)
	if err != nil {
		return nil, err
	}
	return c.Access, nil
}

// Index returns the index.Index for name, with the same lazy-open
// semantics as Get.
func (s *DataStore) Index(name string, createIfMissing bool) (*index.Index, error) {
	c, err := s.getCollection(name, createIfMissing)
	if err != nil {
		return nil, err
	}
	return c.Index, nil
}

func (s *DataStore) getCollection(name string, createIfMissing bool) (*collection, error) {
	if !nameRE.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}

	s.mu.RLock()
	c, ok := s.open[name]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}

	if !createIfMissing && !s.exists(name) {
		return nil, fmt.Errorf("%w: collection %q does not exist", index.ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.open[name]; ok {
		return c, nil
	}

	log.Infof("opening collection %q", name)
	idx, err := index.Open(s.dir, name)
	if err != nil {
		return nil, err
	}
	acc, err := access.NewStore(idx, s.defaultAllow)
	if err != nil {
		idx.Close()
		return nil, err
	}
	c = &collection{Index: idx, Access: acc, Pipeline: query.New(idx, acc, s.accessControlEnabled)}
	s.open[name] = c
	return c, nil
}

func (s *DataStore) exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name+".cdx"))
	return err == nil
}

// ListCollections returns the names of every collection with an on-disk
// database, whether or not it is currently open, sorted alphabetically.
func (s *DataStore) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cdx") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".cdx"))
	}
	sort.Strings(names)
	return names, nil
}

// Close closes every currently open collection. It is intended for clean
// process shutdown; Close does not prevent later reopening via Get.
func (s *DataStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for name, c := range s.open {
		if err := c.Index.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %q: %w", name, err)
		}
	}
	s.open = make(map[string]*collection)
	return firstErr
}
