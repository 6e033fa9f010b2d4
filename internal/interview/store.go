package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

// Store persists interview states keyed by id.
//
// Implementations must make a write durable before returning, report an
// unknown id from Load as a NotFoundError, and report every other failure as
// a StoreError.
type Store interface {
	Create(ctx context.Context, s *State) error
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, s *State) error
	List(ctx context.Context) ([]*State, error)
	// DeleteCompletedBefore removes complete interviews last updated before
	// cutoff and returns their ids.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	Close() error
}

// InterviewsDir is the subdirectory of the data directory used by FileStore.
const InterviewsDir = "interviews"

// FileStore keeps one JSON document per interview under
// <data_dir>/interviews/<id>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a filesystem-backed store rooted at dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, InterviewsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating interviews directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file holding interview id.
func (fs *FileStore) Path(id string) string {
	return filepath.Join(fs.dir, id+".json")
}

// Create persists a new interview. It fails if the id is taken.
func (fs *FileStore) Create(_ context.Context, s *State) error {
	if _, err := os.Stat(fs.Path(s.ID)); err == nil {
		return tferrors.NewStoreError("create", s.ID, fmt.Errorf("interview already exists"))
	}
	if err := fs.write(s); err != nil {
		return tferrors.NewStoreError("create", s.ID, err)
	}
	return nil
}

// Load reads one interview.
func (fs *FileStore) Load(_ context.Context, id string) (*State, error) {
	if !validID(id) {
		return nil, tferrors.NewNotFoundError(id)
	}
	data, err := os.ReadFile(fs.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tferrors.NewNotFoundError(id)
		}
		return nil, tferrors.NewStoreError("load", id, err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, tferrors.NewStoreError("load", id, fmt.Errorf("parsing %s.json: %w", id, err))
	}
	return &s, nil
}

// Save overwrites an interview.
func (fs *FileStore) Save(_ context.Context, s *State) error {
	if err := fs.write(s); err != nil {
		return tferrors.NewStoreError("save", s.ID, err)
	}
	return nil
}

// List returns every interview, oldest first. Unreadable files are skipped.
func (fs *FileStore) List(ctx context.Context) ([]*State, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, tferrors.NewStoreError("list", "", err)
	}

	var result []*State
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		s, err := fs.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		result = append(result, s)
	}
	sortStates(result)
	return result, nil
}

// DeleteCompletedBefore removes complete interviews last updated before cutoff.
func (fs *FileStore) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	all, err := fs.List(ctx)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, s := range all {
		if !s.Complete || !s.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(fs.Path(s.ID)); err != nil && !os.IsNotExist(err) {
			return removed, tferrors.NewStoreError("delete", s.ID, err)
		}
		removed = append(removed, s.ID)
	}
	return removed, nil
}

// Close is a no-op.
func (fs *FileStore) Close() error { return nil }

// write marshals s to a temp file in the same directory and renames it into
// place, so readers never observe a partial document.
func (fs *FileStore) write(s *State) error {
	if !validID(s.ID) {
		return fmt.Errorf("invalid interview id %q", s.ID)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling interview: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, s.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmpName, fs.Path(s.ID))
}

// validID rejects ids that could escape the store directory.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

func sortStates(states []*State) {
	sort.SliceStable(states, func(i, j int) bool {
		if !states[i].CreatedAt.Equal(states[j].CreatedAt) {
			return states[i].CreatedAt.Before(states[j].CreatedAt)
		}
		return states[i].ID < states[j].ID
	})
}
