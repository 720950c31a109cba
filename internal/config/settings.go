package config

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type settingsData struct {
	DefaultFolder string `yaml:"default_folder"`
}

// Settings is the small mutable key-value state that survives restarts,
// currently just the default folder name. It satisfies folders.Settings.
type Settings struct {
	path string

	mu   sync.Mutex
	data settingsData
}

// OpenSettings loads the settings file, seeding the default folder name on
// first run. A missing file is normal; a corrupt one falls back to the
// seed value.
func OpenSettings(path, seedDefaultFolder string) (*Settings, error) {
	s := &Settings{
		path: path,
		data: settingsData{DefaultFolder: seedDefaultFolder},
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var loaded settingsData
	if err := yaml.Unmarshal(raw, &loaded); err == nil && loaded.DefaultFolder != "" {
		s.data = loaded
	}
	return s, nil
}

// DefaultFolder returns the stored default folder name.
func (s *Settings) DefaultFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DefaultFolder
}

// SetDefaultFolder stores and persists a new default folder name.
func (s *Settings) SetDefaultFolder(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data.DefaultFolder
	s.data.DefaultFolder = name
	if err := s.persist(); err != nil {
		s.data.DefaultFolder = prev
		return err
	}
	return nil
}

func (s *Settings) persist() error {
	raw, err := yaml.Marshal(s.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}
