// Package session persists browser tabs so a set of open listings can be
// restored later.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for unknown session names.
var ErrNotFound = errors.New("session not found")

// DefaultMaxClosed is how many closed tabs are remembered.
const DefaultMaxClosed = 20

// Tab is the persisted state of one browser tab.
type Tab struct {
	Service      string   `yaml:"service" json:"service"`
	Title        string   `yaml:"title,omitempty" json:"title,omitempty"`
	Breadcrumb   []string `yaml:"breadcrumb,omitempty" json:"breadcrumb,omitempty"`
	Filter       *string  `yaml:"filter,omitempty" json:"filter,omitempty"`
	SelectedItem *string  `yaml:"selected_item,omitempty" json:"selected_item,omitempty"`
	Region       string   `yaml:"region,omitempty" json:"region,omitempty"`
	Profile      string   `yaml:"profile,omitempty" json:"profile,omitempty"`
}

// Session is a named set of tabs.
type Session struct {
	Name  string    `yaml:"name" json:"name"`
	Saved time.Time `yaml:"saved" json:"saved"`
	Tabs  []Tab     `yaml:"tabs" json:"tabs"`
}

type document struct {
	Sessions []Session `yaml:"sessions,omitempty"`
	Closed   []Tab     `yaml:"closed,omitempty"`
}

// DefaultPath returns the session file under the XDG state directory,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("cloudx", "sessions.yaml"))
}

// Store is a YAML file holding named sessions and recently closed tabs. It
// is safe for concurrent use within one process.
type Store struct {
	path      string
	maxClosed int
	now       func() time.Time
	mu        sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxClosed bounds the closed-tab history.
func WithMaxClosed(n int) Option { return func(s *Store) { s.maxClosed = n } }

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// NewStore returns a store backed by path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, maxClosed: DefaultMaxClosed, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read sessions: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode sessions %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*.yaml")
	if err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write sessions: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// List returns saved sessions ordered by name.
func (s *Store) List() ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.Slice(doc.Sessions, func(i, j int) bool { return doc.Sessions[i].Name < doc.Sessions[j].Name })
	return doc.Sessions, nil
}

// Get returns the named session.
func (s *Store) Get(name string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return Session{}, err
	}
	for _, sess := range doc.Sessions {
		if sess.Name == name {
			return sess, nil
		}
	}
	return Session{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Save stores tabs under name, replacing a session of the same name.
func (s *Store) Save(name string, tabs []Tab) error {
	if name == "" {
		return errors.New("session name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	sess := Session{Name: name, Saved: s.now().UTC().Truncate(time.Second), Tabs: tabs}
	for i := range doc.Sessions {
		if doc.Sessions[i].Name == name {
			doc.Sessions[i] = sess
			return s.write(doc)
		}
	}
	doc.Sessions = append(doc.Sessions, sess)
	return s.write(doc)
}

// Delete removes the named session.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	for i := range doc.Sessions {
		if doc.Sessions[i].Name == name {
			doc.Sessions = append(doc.Sessions[:i], doc.Sessions[i+1:]...)
			return s.write(doc)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// RecordClosed appends a closed tab, dropping the oldest beyond the limit.
func (s *Store) RecordClosed(tab Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Closed = append(doc.Closed, tab)
	if s.maxClosed > 0 && len(doc.Closed) > s.maxClosed {
		doc.Closed = doc.Closed[len(doc.Closed)-s.maxClosed:]
	}
	return s.write(doc)
}

// Closed returns closed tabs, most recent last.
func (s *Store) Closed() ([]Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Closed, nil
}
