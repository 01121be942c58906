// Package registry maps human-chosen index names to corpus roots and index
// storage locations.
//
// The on-disk registry file is the single source of truth; an in-memory copy
// is cached per process and invalidated on mutation. Create and delete take a
// file lock so two processes cannot race on the same name.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	terrors "github.com/tome-search/tome/internal/errors"
)

// Entry is one registered corpus.
type Entry struct {
	// Name is the user-chosen index name.
	Name string `yaml:"name"`
	// RootPath is the absolute corpus root directory.
	RootPath string `yaml:"root_path"`
	// Storage is the directory holding this corpus's index store.
	Storage string `yaml:"storage"`
	// ID is the creation identifier, assigned once at create time.
	ID string `yaml:"id"`
	// CreatedAt records when the corpus was registered.
	CreatedAt time.Time `yaml:"created_at"`
}

// IndexPath returns the index store location for this corpus.
func (e Entry) IndexPath() string {
	return filepath.Join(e.Storage, "index.db")
}

// ResultsPath returns where numbered search results are persisted so a later
// `open` can resolve hit numbers.
func (e Entry) ResultsPath() string {
	return filepath.Join(e.Storage, "results.json")
}

type registryFile struct {
	Version int     `yaml:"version"`
	Indices []Entry `yaml:"indices"`
}

// Registry provides name→corpus resolution with a create/delete lifecycle.
type Registry struct {
	path       string // registry yaml file
	indicesDir string // parent dir for per-corpus storage

	mu     sync.Mutex
	cache  []Entry
	loaded bool
}

// New creates a registry over the given file and storage parent directory.
func New(path, indicesDir string) *Registry {
	return &Registry{path: path, indicesDir: indicesDir}
}

// Create registers a new corpus. It fails if the name is already taken, the
// root path is already registered under another name, or the root path is not
// an existing directory. The storage directory is created; building the index
// into it is the caller's job.
func (r *Registry) Create(name, rootPath string) (Entry, error) {
	if name == "" {
		return Entry{}, terrors.ConfigError("index name must not be empty", nil)
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return Entry{}, terrors.IOError(fmt.Sprintf("resolving corpus root %s", rootPath), err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Entry{}, terrors.IOError(fmt.Sprintf("corpus root %s not accessible", absRoot), err)
	}
	if !info.IsDir() {
		return Entry{}, terrors.ConfigError(fmt.Sprintf("corpus root %s is not a directory", absRoot), nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.lockFile()
	if err != nil {
		return Entry{}, err
	}
	defer unlock()

	entries, err := r.loadLocked()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return Entry{}, terrors.Newf(terrors.ErrCodeIndexExists, "index %q already exists", name).
				WithDetail("index", name)
		}
		if e.RootPath == absRoot {
			return Entry{}, terrors.Newf(terrors.ErrCodeIndexExists,
				"path %s is already indexed as %q", absRoot, e.Name)
		}
	}

	id := uuid.NewString()
	entry := Entry{
		Name:      name,
		RootPath:  absRoot,
		Storage:   filepath.Join(r.indicesDir, id),
		ID:        id,
		CreatedAt: time.Now().UTC(),
	}
	if err := os.MkdirAll(entry.Storage, 0o755); err != nil {
		return Entry{}, terrors.IOError(fmt.Sprintf("creating storage directory %s", entry.Storage), err)
	}

	entries = append(entries, entry)
	if err := r.saveLocked(entries); err != nil {
		// Roll back the storage dir so a failed save leaves nothing behind.
		_ = os.RemoveAll(entry.Storage)
		return Entry{}, err
	}
	return entry, nil
}

// List returns all registered corpora sorted by name.
func (r *Registry) List() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted, nil
}

// Resolve returns the entry for a name.
func (r *Registry) Resolve(name string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.loadLocked()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, terrors.IndexNotFound(name)
}

// Delete removes a corpus's registry entry and its persisted index store.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.lockFile()
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := r.loadLocked()
	if err != nil {
		return err
	}

	idx := -1
	for i, e := range entries {
		if e.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return terrors.IndexNotFound(name)
	}

	removed := entries[idx]
	entries = append(entries[:idx], entries[idx+1:]...)

	// Registry entry goes first: a crash after this point leaves an orphaned
	// storage directory, never a registry entry pointing at nothing.
	if err := r.saveLocked(entries); err != nil {
		return err
	}
	if err := os.RemoveAll(removed.Storage); err != nil {
		return terrors.IOError(fmt.Sprintf("removing index storage %s", removed.Storage), err)
	}
	return nil
}

// lockFile takes the cross-process registry lock.
func (r *Registry) lockFile() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, terrors.IOError("creating registry directory", err)
	}
	fl := flock.New(r.path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, terrors.IOError("locking registry", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (r *Registry) loadLocked() ([]Entry, error) {
	if r.loaded {
		return r.cache, nil
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.cache = nil
		r.loaded = true
		return nil, nil
	}
	if err != nil {
		return nil, terrors.IOError("reading registry", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, terrors.New(terrors.ErrCodeRegistryWrite, "registry file is malformed", err).
			WithDetail("path", r.path)
	}

	r.cache = file.Indices
	r.loaded = true
	return r.cache, nil
}

// saveLocked writes the registry atomically (temp file + rename) and
// refreshes the cache.
func (r *Registry) saveLocked(entries []Entry) error {
	data, err := yaml.Marshal(registryFile{Version: 1, Indices: entries})
	if err != nil {
		return terrors.New(terrors.ErrCodeRegistryWrite, "encoding registry", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return terrors.New(terrors.ErrCodeRegistryWrite, "writing registry", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return terrors.New(terrors.ErrCodeRegistryWrite, "replacing registry", err)
	}

	r.cache = entries
	r.loaded = true
	return nil
}
