// Package store provides durable whole-document JSON storage for the four
// application collections. It mirrors the browser localStorage contract:
// reads of missing or unparsable documents yield "absent" instead of an
// error, and writes replace the whole document.
package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	zlog "github.com/rs/zerolog/log"
)

// Collection names a stored document.
type Collection string

const (
	Accounts       Collection = "accounts"
	Session        Collection = "session"
	History        Collection = "history"
	SavedPlaylists Collection = "saved_playlists"
)

// Store persists each collection as a JSON file under a base directory.
// There is no versioning and no partial update: last writer wins, which is
// acceptable for the single-client design.
type Store struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// New creates a store rooted at dir on the given filesystem, creating the
// directory if needed.
func New(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create storage directory")
	}
	return &Store{fs: fs, dir: dir}, nil
}

// path returns the document path for a collection.
func (s *Store) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

// Read decodes the collection document into v. It returns false without
// touching v when the document is missing or unparsable; corrupted state
// must never crash startup.
func (s *Store) Read(c Collection, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(c))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		zlog.Warn().Msgf("store: discarding unparsable document: collection=%s error=%v", c, err)
		return false
	}
	return true
}

// Write encodes v and replaces the collection document. The document is
// written to a temp file first and renamed into place so readers never see
// a torn write.
func (s *Store) Write(c Collection, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode collection %s", c)
	}

	tmp := s.path(c) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write collection %s", c)
	}
	if err := s.fs.Rename(tmp, s.path(c)); err != nil {
		return errors.Wrapf(err, "failed to replace collection %s", c)
	}
	return nil
}

// Delete removes the collection document. Missing documents are not an error.
func (s *Store) Delete(c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(s.path(c))
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path(c)); !exists {
			return nil
		}
		return errors.Wrapf(err, "failed to delete collection %s", c)
	}
	return nil
}
