// Package filestore is the session-isolated in-memory blob store for files
// exchanged alongside command results.
package filestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEncoding is returned when uploaded content is not valid Base64.
var ErrInvalidEncoding = errors.New("invalid base64 content")

// ErrTooLarge is returned when decoded content exceeds the size limit.
var ErrTooLarge = errors.New("file exceeds maximum allowed size")

// File is one stored blob plus its metadata.
type File struct {
	ID          string
	Name        string
	Content     []byte
	SessionID   string
	ContentType string
	Summary     string
	SizeBytes   int64
	UploadedAt  time.Time
}

// Store keeps files strictly partitioned by session: a file id resolves only
// within the session that uploaded it.
type Store struct {
	mu       sync.Mutex
	files    map[string]map[string]*File
	order    map[string][]string
	maxBytes int64
	clock    func() time.Time
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator overrides file id generation, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates a file store. maxBytes <= 0 disables the size limit.
func NewStore(maxBytes int64, opts ...Option) *Store {
	s := &Store{
		files:    make(map[string]map[string]*File),
		order:    make(map[string][]string),
		maxBytes: maxBytes,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload decodes Base64 content and stores the file under a fresh id.
// Invalid encoding and oversized content are rejected before any mutation.
func (s *Store) Upload(sessionID, name, contentBase64, contentType, summary string) (File, error) {
	content, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return File{}, fmt.Errorf("%w: %s", ErrInvalidEncoding, name)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return File{}, fmt.Errorf("%w: %s (%d bytes)", ErrTooLarge, name, len(content))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bySession, ok := s.files[sessionID]
	if !ok {
		bySession = make(map[string]*File)
		s.files[sessionID] = bySession
	}

	f := &File{
		ID:          s.newID(),
		Name:        name,
		Content:     content,
		SessionID:   sessionID,
		ContentType: contentType,
		Summary:     summary,
		SizeBytes:   int64(len(content)),
		UploadedAt:  s.clock(),
	}
	bySession[f.ID] = f
	s.order[sessionID] = append(s.order[sessionID], f.ID)
	return copyFile(f), nil
}

// Get returns the file only when it belongs to the given session.
func (s *Store) Get(sessionID, fileID string) (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[sessionID][fileID]
	if !ok {
		return File{}, false
	}
	return copyFile(f), true
}

// List returns the session's files in upload order.
func (s *Store) List(sessionID string) []File {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.order[sessionID]
	out := make([]File, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.files[sessionID][id]; ok {
			out = append(out, copyFile(f))
		}
	}
	return out
}

// ValidateAccess reports whether fileID is visible from sessionID.
func (s *Store) ValidateAccess(sessionID, fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[sessionID][fileID]
	return ok
}

func copyFile(f *File) File {
	out := *f
	out.Content = append([]byte(nil), f.Content...)
	return out
}
