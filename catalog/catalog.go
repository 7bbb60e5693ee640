package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jonwraymond/toolwire/codec"
)

// Error values for consistent error handling by callers.
var (
	ErrNotFound       = errors.New("catalog: schema not found")
	ErrInvalidEntry   = errors.New("catalog: invalid entry")
	ErrInvalidProgram = errors.New("catalog: invalid program address")
)

// Entry is one cataloged program schema: the address it was discovered at,
// the raw compact document, and fields lifted out of it for listing.
type Entry struct {
	Program   string
	Name      string
	Version   string
	Tools     int
	Raw       []byte
	UpdatedAt time.Time
}

// NewEntry decodes raw schema bytes and builds a catalog entry for the
// program address.
func NewEntry(program string, raw []byte) (Entry, error) {
	if program == "" {
		return Entry{}, ErrInvalidProgram
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Program:   program,
		Name:      doc.Name,
		Version:   doc.Version,
		Tools:     len(doc.Tools),
		Raw:       append([]byte(nil), raw...),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Document decodes the stored schema bytes.
func (e *Entry) Document() (*codec.Document, error) {
	return codec.Decode(e.Raw)
}

// Store defines schema catalog operations.
type Store interface {
	// Put inserts or replaces the entry for its program address.
	Put(ctx context.Context, entry Entry) error
	// Get returns the entry for a program address.
	Get(ctx context.Context, program string) (Entry, error)
	// List returns all entries ordered by program address.
	List(ctx context.Context) ([]Entry, error)
	// Delete removes the entry for a program address.
	Delete(ctx context.Context, program string) error
}

// InMemoryStore keeps entries in memory. It is safe for concurrent use.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewInMemoryStore creates an empty in-memory catalog.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]Entry)}
}

// Put inserts or replaces the entry for its program address.
func (s *InMemoryStore) Put(_ context.Context, entry Entry) error {
	if entry.Program == "" {
		return ErrInvalidProgram
	}
	if len(entry.Raw) == 0 {
		return ErrInvalidEntry
	}

	s.mu.Lock()
	s.entries[entry.Program] = entry
	s.mu.Unlock()
	return nil
}

// Get returns the entry for a program address.
func (s *InMemoryStore) Get(_ context.Context, program string) (Entry, error) {
	if program == "" {
		return Entry{}, ErrInvalidProgram
	}

	s.mu.RLock()
	entry, ok := s.entries[program]
	s.mu.RUnlock()

	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// List returns all entries ordered by program address.
func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	programs := make([]string, 0, len(s.entries))
	for program := range s.entries {
		programs = append(programs, program)
	}
	sort.Strings(programs)

	result := make([]Entry, 0, len(programs))
	for _, program := range programs {
		result = append(result, s.entries[program])
	}
	return result, nil
}

// Delete removes the entry for a program address.
func (s *InMemoryStore) Delete(_ context.Context, program string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[program]; !ok {
		return ErrNotFound
	}
	delete(s.entries, program)
	return nil
}
