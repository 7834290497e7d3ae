package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/maheshrc27/postflow-cli/internal/models"
)

const (
	galleryFileName     = "gallery.json"
	preferencesFileName = "preferences.json"
)

type preferences struct {
	Theme string `json:"theme"`
}

// Store persists small client-side state that outlives a single run: the
// generated-image gallery and display preferences. Each concern has its own
// file under the state directory; the session token lives elsewhere.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadGallery() ([]models.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, galleryFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var gallery []models.GeneratedImage
	if err := json.Unmarshal(data, &gallery); err != nil {
		return nil, err
	}
	return gallery, nil
}

func (s *Store) SaveGallery(gallery []models.GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(gallery)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, galleryFileName), data, 0o600)
}

func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, preferencesFileName))
	if err != nil {
		return ""
	}
	var prefs preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return ""
	}
	return prefs.Theme
}

func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(preferences{Theme: theme})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, preferencesFileName), data, 0o600)
}
