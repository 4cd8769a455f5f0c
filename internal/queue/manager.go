// Package queue owns the per-(session, client) FIFO command queues.
package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Command is an immutable unit of work addressed to one client.
type Command struct {
	ID           string
	Content      string
	TargetClient string
	SessionID    string
	CreatedAt    time.Time
}

// Manager serializes all queue mutations behind one mutex. Every operation is
// O(1) or O(clients-in-session), so a coarse lock is sufficient.
type Manager struct {
	mu     sync.Mutex
	queues map[string]map[string][]Command
	clock  func() time.Time
	newID  func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithIDGenerator overrides command id generation, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates an empty queue manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		queues: make(map[string]map[string][]Command),
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit appends a new command to the tail of the target client's queue,
// creating the queue container lazily. The assigned id is globally unique.
func (m *Manager) Submit(sessionID, targetClientID, content string) Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	byClient, ok := m.queues[sessionID]
	if !ok {
		byClient = make(map[string][]Command)
		m.queues[sessionID] = byClient
	}

	cmd := Command{
		ID:           m.newID(),
		Content:      content,
		TargetClient: targetClientID,
		SessionID:    sessionID,
		CreatedAt:    m.clock(),
	}
	byClient[targetClientID] = append(byClient[targetClientID], cmd)
	return cmd
}

// Dequeue pops the head of the client's queue. The second return is false when
// the queue is empty or never existed.
func (m *Manager) Dequeue(sessionID, clientID string) (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dequeueLocked(sessionID, clientID)
}

// DequeueWithRemaining pops the head and reports the post-removal queue size
// in the same critical section, so the size can never race with the removal.
func (m *Manager) DequeueWithRemaining(sessionID, clientID string) (Command, bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd, ok := m.dequeueLocked(sessionID, clientID)
	remaining := 0
	if byClient, exists := m.queues[sessionID]; exists {
		remaining = len(byClient[clientID])
	}
	return cmd, ok, remaining
}

func (m *Manager) dequeueLocked(sessionID, clientID string) (Command, bool) {
	byClient, ok := m.queues[sessionID]
	if !ok {
		return Command{}, false
	}
	q := byClient[clientID]
	if len(q) == 0 {
		return Command{}, false
	}
	head := q[0]
	// The container persists when drained so isolation stays queryable.
	byClient[clientID] = q[1:]
	return head, true
}

// QueueSize returns the number of pending commands for the client.
func (m *Manager) QueueSize(sessionID, clientID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	byClient, ok := m.queues[sessionID]
	if !ok {
		return 0
	}
	return len(byClient[clientID])
}

// ClientsWithPending returns the ids of clients holding non-empty queues in
// the session, sorted for deterministic output.
func (m *Manager) ClientsWithPending(sessionID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	byClient, ok := m.queues[sessionID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(byClient))
	for clientID, q := range byClient {
		if len(q) > 0 {
			out = append(out, clientID)
		}
	}
	sort.Strings(out)
	return out
}

// ClearSession drops every queue belonging to the session.
func (m *Manager) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, sessionID)
}
