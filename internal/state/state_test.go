package state

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewState(t *testing.T) {
	s := NewState()

	if s.Files == nil {
		t.Error("Files map should be initialized")
	}
	if len(s.Files) != 0 {
		t.Error("Files map should be empty")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "state.json")

	state := NewState()
	state.Files["songs/a.txt"] = &FileState{
		MTime:  123456789,
		Hash:   "blake3:abc123",
		Output: "out/a.cho",
	}

	if err := state.Save(statePath); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	loaded, err := Load(statePath)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	fileState, ok := loaded.Get("songs/a.txt")
	if !ok {
		t.Fatal("File state not found")
	}
	if fileState.MTime != 123456789 {
		t.Errorf("MTime mismatch: got %d, want 123456789", fileState.MTime)
	}
	if fileState.Hash != "blake3:abc123" {
		t.Errorf("Hash mismatch: got %s, want blake3:abc123", fileState.Hash)
	}
	if fileState.Output != "out/a.cho" {
		t.Errorf("Output mismatch: got %s, want out/a.cho", fileState.Output)
	}
}

func TestLoadNonExistent(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nonexistent.json")

	// Should return empty state, not error
	state, err := Load(statePath)
	if err != nil {
		t.Fatalf("Load should not error on missing file: %v", err)
	}
	if state == nil || len(state.Files) != 0 {
		t.Error("State should be empty")
	}
}

func TestLoadCorrupt(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}

	if _, err := Load(statePath); err == nil {
		t.Error("Load should fail on a corrupt state file")
	}
}

func TestComputeHash(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.txt")

	if err := os.WriteFile(testFile, []byte("Hello, World!"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if !strings.HasPrefix(hash, "blake3:") {
		t.Errorf("Hash should start with 'blake3:', got: %s", hash)
	}
	// 32-byte digest, hex encoded
	if len(hash) != len("blake3:")+64 {
		t.Errorf("Unexpected hash length %d: %s", len(hash), hash)
	}

	hash2, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("Second ComputeHash failed: %v", err)
	}
	if hash != hash2 {
		t.Error("Hash should be deterministic")
	}

	if err := os.WriteFile(testFile, []byte("Different content"), 0644); err != nil {
		t.Fatalf("Failed to update test file: %v", err)
	}
	hash3, err := ComputeHash(testFile)
	if err != nil {
		t.Fatalf("Third ComputeHash failed: %v", err)
	}
	if hash == hash3 {
		t.Error("Hash should change when content changes")
	}
}

func TestHasChanged(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "song.txt")

	if err := os.WriteFile(testFile, []byte("Initial content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(testFile, past, past); err != nil {
		t.Fatalf("Failed to set file times: %v", err)
	}

	state := NewState()

	// New file - should be changed
	changed, err := state.HasChanged(testFile)
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if !changed {
		t.Error("New file should be marked as changed")
	}

	if err := state.Update(testFile, "song.cho"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	changed, err = state.HasChanged(testFile)
	if err != nil {
		t.Fatalf("HasChanged failed: %v", err)
	}
	if changed {
		t.Error("Unchanged file should not be marked as changed")
	}

	// Touch file (change mtime but not content)
	touched := past.Add(10 * time.Minute)
	if err := os.Chtimes(testFile, touched, touched); err != nil {
		t.Fatalf("Failed to touch file: %v", err)
	}

	changed, err = state.HasChanged(testFile)
	if err != nil {
		t.Fatalf("HasChanged failed after touch: %v", err)
	}
	if changed {
		t.Error("File with only mtime change should not be marked as changed")
	}

	// Actually change content
	if err := os.WriteFile(testFile, []byte("New content"), 0644); err != nil {
		t.Fatalf("Failed to update file: %v", err)
	}
	edited := past.Add(20 * time.Minute)
	if err := os.Chtimes(testFile, edited, edited); err != nil {
		t.Fatalf("Failed to set file times: %v", err)
	}

	changed, err = state.HasChanged(testFile)
	if err != nil {
		t.Fatalf("HasChanged failed after content change: %v", err)
	}
	if !changed {
		t.Error("File with content change should be marked as changed")
	}
}

func TestHasChangedMissingFile(t *testing.T) {
	state := NewState()

	if _, err := state.HasChanged(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("HasChanged should fail for a missing file")
	}
}

func TestUpdateAndForget(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "song.txt")

	if err := os.WriteFile(testFile, []byte("Test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	state := NewState()
	if err := state.Update(testFile, "song.cho"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fileState, ok := state.Get(testFile)
	if !ok {
		t.Fatal("File state not found after update")
	}
	if fileState.MTime == 0 {
		t.Error("MTime should be set")
	}
	if fileState.Hash == "" {
		t.Error("Hash should be set")
	}
	if fileState.Output != "song.cho" {
		t.Errorf("Output mismatch: got %s, want song.cho", fileState.Output)
	}

	state.Forget(testFile)
	if _, ok := state.Get(testFile); ok {
		t.Error("File state should be gone after Forget")
	}
}

func TestPaths(t *testing.T) {
	state := NewState()
	state.Files["b.txt"] = &FileState{}
	state.Files["a.txt"] = &FileState{}
	state.Files["c/d.txt"] = &FileState{}

	want := []string{"a.txt", "b.txt", "c/d.txt"}
	if got := state.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestConcurrentUpdate(t *testing.T) {
	tmpDir := t.TempDir()
	state := NewState()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		path := filepath.Join(tmpDir, "song"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(path, []byte(path), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if err := state.Update(p, p+".cho"); err != nil {
				t.Errorf("Update(%s) failed: %v", p, err)
			}
		}(path)
	}
	wg.Wait()

	if n := len(state.Paths()); n != 16 {
		t.Errorf("expected 16 tracked files, got %d", n)
	}
}

func TestGetMTime(t *testing.T) {
	state := NewState()

	if mtime := state.GetMTime("nonexistent.txt"); !mtime.IsZero() {
		t.Error("MTime for non-existent file should be zero")
	}

	state.Files["test.txt"] = &FileState{
		MTime: 1234567890,
		Hash:  "blake3:test",
	}

	if mtime := state.GetMTime("test.txt"); mtime.Unix() != 1234567890 {
		t.Errorf("MTime mismatch: got %d, want 1234567890", mtime.Unix())
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	state := NewState()
	state.Files["song.txt"] = &FileState{MTime: 123, Hash: "blake3:test"}

	if err := state.Save(statePath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		t.Error("State file was not created")
	}
}
