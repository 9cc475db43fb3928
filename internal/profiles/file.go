package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// fileData is the on-disk document layout of the JSON store.
type fileData struct {
	Profiles    map[string]*Profile `json:"profiles"`
	LastProfile string              `json:"last_profile,omitempty"`
	LatestState *State              `json:"latest_state,omitempty"`
}

// FileStore keeps all user data in a single JSON file, rewritten on
// every mutation. Good enough for the single-user deployment the
// service started as.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewFileStore creates a JSON-file store at path, creating the parent
// directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating user data directory: %w", err)
	}
	return &FileStore{
		path:   path,
		logger: log.With().Str("component", "profile-store").Str("backend", "file").Logger(),
	}, nil
}

func (s *FileStore) load() (*fileData, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &fileData{Profiles: map[string]*Profile{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading user data: %w", err)
	}
	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("user data file corrupt, starting empty")
		return &fileData{Profiles: map[string]*Profile{}}, nil
	}
	if data.Profiles == nil {
		data.Profiles = map[string]*Profile{}
	}
	return &data, nil
}

func (s *FileStore) save(data *fileData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user data: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing user data: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing user data: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]ListEntry, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, "", err
	}
	entries := make([]ListEntry, 0, len(data.Profiles))
	for name, p := range data.Profiles {
		entries = append(entries, ListEntry{Name: name, UpdatedAt: p.UpdatedAt, Summary: p.Summary})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, data.LastProfile, nil
}

func (s *FileStore) Get(ctx context.Context, name string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	p, ok := data.Profiles[name]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *FileStore) Save(ctx context.Context, name string, config json.RawMessage, menu []MenuItem, overwrite bool) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, exists := data.Profiles[name]; exists && !overwrite {
		return nil, ErrExists
	}
	if menu == nil {
		menu = []MenuItem{}
	}
	p := &Profile{
		Name:      name,
		Config:    config,
		Menu:      menu,
		Summary:   summarize(menu),
		UpdatedAt: now(),
	}
	data.Profiles[name] = p
	data.LastProfile = name
	if err := s.save(data); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data.Profiles[name]; !ok {
		return nil
	}
	delete(data.Profiles, name)
	if data.LastProfile == name {
		data.LastProfile = ""
	}
	return s.save(data)
}

func (s *FileStore) SetLast(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data.LastProfile = name
	return s.save(data)
}

func (s *FileStore) LatestState(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	if data.LatestState == nil {
		return &State{Menu: []MenuItem{}}, nil
	}
	return data.LatestState, nil
}

func (s *FileStore) SaveLatestState(ctx context.Context, config json.RawMessage, menu []MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if menu == nil {
		menu = []MenuItem{}
	}
	data.LatestState = &State{Config: config, Menu: menu, UpdatedAt: now()}
	return s.save(data)
}

func (s *FileStore) Export(ctx context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding user data: %w", err)
	}
	return raw, nil
}

func (s *FileStore) Close() {}
