package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// FileState represents the state of a single converted song
type FileState struct {
	MTime  int64  `json:"mtime"`
	Hash   string `json:"hash"`
	Output string `json:"output"`
}

// State tracks which songs have been converted and from what content
type State struct {
	mu    sync.Mutex
	Files map[string]*FileState `json:"files"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files: make(map[string]*FileState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileState)
	}

	return state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes the BLAKE3 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("blake3:%x", h.Sum(nil)), nil
}

// HasChanged checks if a file has changed since it was last converted
// Uses hybrid mtime + hash approach
func (s *State) HasChanged(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	fileState, exists := s.Files[path]
	s.mu.Unlock()

	if !exists {
		return true, nil
	}

	// Fast path: check mtime first
	if info.ModTime().Unix() == fileState.MTime {
		return false, nil
	}

	// mtime changed, compute hash to check for actual content changes
	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != fileState.Hash, nil
}

// Update records the current content of a song and where it was written
func (s *State) Update(path, output string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Files[path] = &FileState{
		MTime:  info.ModTime().Unix(),
		Hash:   hash,
		Output: output,
	}

	return nil
}

// Forget removes a song from the state
func (s *State) Forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Files, path)
}

// Get returns a copy of the state recorded for a song
func (s *State) Get(path string) (FileState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileState, ok := s.Files[path]
	if !ok {
		return FileState{}, false
	}
	return *fileState, true
}

// Paths returns the tracked song paths in sorted order
func (s *State) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.Files))
	for path := range s.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// GetMTime returns the modification time recorded for a song
func (s *State) GetMTime(path string) time.Time {
	if fileState, ok := s.Get(path); ok {
		return time.Unix(fileState.MTime, 0)
	}
	return time.Time{}
}
