// Package result owns the command-id-indexed store of execution outcomes and
// the unified projection used by every result query path.
package result

import (
	"sync"
	"time"
)

// Status is the execution state of a command.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known execution states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Mode records how a result was produced. Callers cannot distinguish modes
// from the unified view's field layout, only from this value.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// Result is one stored execution outcome.
type Result struct {
	CommandID    string
	SessionID    string
	ClientID     string
	Mode         Mode
	Status       Status
	SubmittedAt  time.Time
	StartedAt    time.Time // zero until the first transition to running
	CompletedAt  time.Time // zero until the first terminal transition
	Content      *string
	ErrorMessage *string
	FileRefs     []string
}

// View is the format-stable projection served to every query path. All keys
// are always present; only values differ between execution patterns.
type View struct {
	CommandID       string     `json:"command_id"`
	ExecutionMode   Mode       `json:"execution_mode"`
	ExecutionStatus Status     `json:"execution_status"`
	ClientID        string     `json:"client_id"`
	SessionID       string     `json:"session_id"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	ResultContent   *string    `json:"result_content"`
	ErrorMessage    *string    `json:"error_message"`
	FileReferences  []string   `json:"file_references"`
}

// Store is the in-memory result index. All access is serialized by one mutex.
type Store struct {
	mu           sync.Mutex
	results      map[string]*Result
	sessionOrder map[string][]string
	clock        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// NewStore creates an empty result store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		results:      make(map[string]*Result),
		sessionOrder: make(map[string][]string),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrGet records a new result, or returns the existing one untouched.
// Later writes must go through UpdateStatus; this call never clobbers state.
// The second return reports whether a record was created.
func (s *Store) CreateOrGet(commandID, sessionID, clientID string, mode Mode, status Status, content, errMsg *string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.results[commandID]; ok {
		return copyResult(existing), false
	}

	rec := &Result{
		CommandID:    commandID,
		SessionID:    sessionID,
		ClientID:     clientID,
		Mode:         mode,
		Status:       status,
		SubmittedAt:  s.clock(),
		Content:      content,
		ErrorMessage: errMsg,
	}
	s.stampLocked(rec, status)
	s.results[commandID] = rec
	s.sessionOrder[sessionID] = append(s.sessionOrder[sessionID], commandID)
	return copyResult(rec), true
}

// UpdateStatus moves an existing result to a new status. Returns false when
// no record exists for the command id. started-at is stamped on the first
// transition to running and completed-at on the first terminal transition;
// neither is ever re-stamped. Content and error are only touched when the
// caller provides them.
func (s *Store) UpdateStatus(commandID string, newStatus Status, content, errMsg *string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.results[commandID]
	if !ok {
		return false
	}
	rec.Status = newStatus
	s.stampLocked(rec, newStatus)
	if content != nil {
		rec.Content = content
	}
	if errMsg != nil {
		rec.ErrorMessage = errMsg
	}
	return true
}

func (s *Store) stampLocked(rec *Result, status Status) {
	switch status {
	case StatusRunning:
		if rec.StartedAt.IsZero() {
			rec.StartedAt = s.clock()
		}
	case StatusCompleted, StatusFailed:
		if rec.CompletedAt.IsZero() {
			rec.CompletedAt = s.clock()
		}
	}
}

// AttachFileRefs appends uploaded file ids to the result's reference list.
// Returns false when no record exists for the command id.
func (s *Store) AttachFileRefs(commandID string, refs ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.results[commandID]
	if !ok {
		return false
	}
	rec.FileRefs = append(rec.FileRefs, refs...)
	return true
}

// Get returns a copy of the stored result.
func (s *Store) Get(commandID string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.results[commandID]
	if !ok {
		return Result{}, false
	}
	return copyResult(rec), true
}

// UnifiedView projects the result into the stable external shape.
func (s *Store) UnifiedView(commandID string) (View, bool) {
	rec, ok := s.Get(commandID)
	if !ok {
		return View{}, false
	}

	view := View{
		CommandID:       rec.CommandID,
		ExecutionMode:   rec.Mode,
		ExecutionStatus: rec.Status,
		ClientID:        rec.ClientID,
		SessionID:       rec.SessionID,
		SubmittedAt:     rec.SubmittedAt,
		ResultContent:   rec.Content,
		ErrorMessage:    rec.ErrorMessage,
		FileReferences:  rec.FileRefs,
	}
	if !rec.StartedAt.IsZero() {
		started := rec.StartedAt
		view.StartedAt = &started
	}
	if !rec.CompletedAt.IsZero() {
		completed := rec.CompletedAt
		view.CompletedAt = &completed
	}
	if view.FileReferences == nil {
		view.FileReferences = []string{}
	}
	return view, true
}

// CommandIDsForSession returns the session's command ids in insertion order.
func (s *Store) CommandIDsForSession(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.sessionOrder[sessionID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func copyResult(rec *Result) Result {
	out := *rec
	if rec.FileRefs != nil {
		out.FileRefs = append([]string(nil), rec.FileRefs...)
	}
	return out
}
