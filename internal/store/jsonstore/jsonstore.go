package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// One process at a time; the mutex only serializes this process's requests.

type record struct {
	model.Circle
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	mu   sync.Mutex
	path string
}

var _ store.Store = (*Store)(nil)

// Open uses the file at path, creating its directory if needed. A missing
// file is an empty collection.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) List(_ context.Context, p model.PageParams) ([]model.Circle, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return nil, 0, err
	}
	p = p.Normalize()
	var match []model.Circle
	for _, r := range recs {
		if !contains(r.Name, p.Name) || !contains(r.Desc, p.Desc) {
			continue
		}
		match = append(match, r.Circle)
	}
	total := len(match)
	start := min(p.Offset(), total)
	end := min(start+p.PageSize, total)
	return append([]model.Circle{}, match[start:end]...), total, nil
}

func (s *Store) Get(_ context.Context, id string) (model.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return model.Circle{}, err
	}
	i := index(recs, id)
	if i < 0 {
		return model.Circle{}, store.ErrNotFound
	}
	return recs[i].Circle, nil
}

func (s *Store) Create(_ context.Context, d model.NewDraft) (model.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return model.Circle{}, err
	}
	if nameTaken(recs, d.Name, "") {
		return model.Circle{}, store.ErrConflict
	}
	c := model.Circle{ID: uuid.NewString(), Name: d.Name, Desc: d.Desc, Avatar: d.Avatar}
	recs = append(recs, record{Circle: c, CreatedAt: time.Now().UTC()})
	if err := s.save(recs); err != nil {
		return model.Circle{}, err
	}
	return c, nil
}

func (s *Store) Update(_ context.Context, p model.ExistingPatch) (model.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return model.Circle{}, err
	}
	i := index(recs, p.ID)
	if i < 0 {
		return model.Circle{}, store.ErrNotFound
	}
	if p.Name != nil && nameTaken(recs, *p.Name, p.ID) {
		return model.Circle{}, store.ErrConflict
	}
	recs[i].Circle = p.Apply(recs[i].Circle)
	if err := s.save(recs); err != nil {
		return model.Circle{}, err
	}
	return recs[i].Circle, nil
}

func (s *Store) Delete(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, err := s.load()
	if err != nil {
		return 0, err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := recs[:0]
	for _, r := range recs {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	n := len(recs) - len(kept)
	if n == 0 {
		return 0, nil
	}
	if err := s.save(kept); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) load() ([]record, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []record{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var recs []record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
	return recs, nil
}

// save writes through a temp file so a crash never leaves half a document.
func (s *Store) save(recs []record) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func index(recs []record, id string) int {
	for i, r := range recs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func nameTaken(recs []record, name, exceptID string) bool {
	for _, r := range recs {
		if r.ID != exceptID && r.Name == name {
			return true
		}
	}
	return false
}

func contains(field, kw string) bool {
	return kw == "" || strings.Contains(strings.ToLower(field), strings.ToLower(kw))
}
