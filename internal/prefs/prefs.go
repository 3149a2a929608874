// ABOUTME: Preferences store backed by a small JSON document on disk.
// ABOUTME: Holds theme, language and the one-time exercise seeding flag.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/harperreed/gymlog/internal/fsutil"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Language is the UI language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// FileName is the preferences file name inside the data directory.
const FileName = "preferences.json"

// ErrInvalid is returned when a preference value is outside its enum.
var ErrInvalid = errors.New("invalid preference")

// Preferences is the persisted preferences document.
type Preferences struct {
	Theme          Theme    `json:"theme"`
	Language       Language `json:"language"`
	ExercisesAdded bool     `json:"exercisesAdded"`
}

// Defaults returns the preferences used when nothing has been saved.
func Defaults() Preferences {
	return Preferences{
		Theme:          ThemeDark,
		Language:       LanguageEnglish,
		ExercisesAdded: false,
	}
}

// Validate checks the enum fields.
func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("%w: theme %q", ErrInvalid, p.Theme)
	}
	switch p.Language {
	case LanguageEnglish, LanguageSpanish:
	default:
		return fmt.Errorf("%w: language %q", ErrInvalid, p.Language)
	}
	return nil
}

// Store reads and writes the preferences file. Safe for concurrent use.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store for the preferences file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the preferences file path.
func (s *Store) Path() string {
	return s.path
}

// Read returns the stored preferences merged over the defaults.
// A missing file is created with the defaults.
func (s *Store) Read() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Write validates and replaces the whole document.
func (s *Store) Write(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(p)
}

// Update applies fn to the current preferences and writes the result.
func (s *Store) Update(fn func(*Preferences)) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.read()
	if err != nil {
		return Preferences{}, err
	}
	fn(&p)
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	if err := s.write(p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// ExercisesAdded reports whether the default exercises were already seeded.
func (s *Store) ExercisesAdded() (bool, error) {
	p, err := s.Read()
	if err != nil {
		return false, err
	}
	return p.ExercisesAdded, nil
}

// SetExercisesAdded persists the seeding flag.
func (s *Store) SetExercisesAdded(added bool) error {
	_, err := s.Update(func(p *Preferences) { p.ExercisesAdded = added })
	return err
}

func (s *Store) read() (Preferences, error) {
	p := Defaults()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(p); err != nil {
			return Preferences{}, err
		}
		return p, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	// Unmarshal over the defaults so missing keys keep their default value.
	if err := json.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("parse preferences: %w", err)
	}
	return p, nil
}

func (s *Store) write(p Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := fsutil.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
