package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOOrdering(t *testing.T) {
	m := NewManager()

	a := m.Submit("s1", "c1", "A")
	b := m.Submit("s1", "c1", "B")
	c := m.Submit("s1", "c1", "C")
	require.NotEqual(t, a.ID, b.ID)
	require.NotEqual(t, b.ID, c.ID)

	for i, want := range []string{"A", "B", "C"} {
		cmd, ok, remaining := m.DequeueWithRemaining("s1", "c1")
		require.True(t, ok, "dequeue %d", i)
		assert.Equal(t, want, cmd.Content)
		assert.Equal(t, 2-i, remaining)
	}

	_, ok, remaining := m.DequeueWithRemaining("s1", "c1")
	assert.False(t, ok)
	assert.Zero(t, remaining)
}

func TestDequeueFromUnknownQueue(t *testing.T) {
	m := NewManager()

	_, ok := m.Dequeue("s1", "ghost")
	assert.False(t, ok)
	assert.Zero(t, m.QueueSize("s1", "ghost"))
}

func TestQueueIsolation(t *testing.T) {
	m := NewManager()

	m.Submit("s1", "a", "for-a")
	m.Submit("s1", "a", "for-a-2")

	assert.Equal(t, 2, m.QueueSize("s1", "a"))
	assert.Zero(t, m.QueueSize("s1", "b"), "other clients in the same session are untouched")
	assert.Zero(t, m.QueueSize("s2", "a"), "same client in another session is untouched")

	cmd, ok := m.Dequeue("s1", "a")
	require.True(t, ok)
	assert.Equal(t, "for-a", cmd.Content)
	assert.Equal(t, "a", cmd.TargetClient)
	assert.Equal(t, "s1", cmd.SessionID)
}

func TestContainerPersistsWhenDrained(t *testing.T) {
	m := NewManager()

	m.Submit("s1", "c1", "only")
	_, ok := m.Dequeue("s1", "c1")
	require.True(t, ok)

	assert.Zero(t, m.QueueSize("s1", "c1"))
	assert.Empty(t, m.ClientsWithPending("s1"), "drained queues are not pending")

	// The drained container still accepts new work in order.
	m.Submit("s1", "c1", "next")
	cmd, ok := m.Dequeue("s1", "c1")
	require.True(t, ok)
	assert.Equal(t, "next", cmd.Content)
}

func TestClientsWithPending(t *testing.T) {
	m := NewManager()

	m.Submit("s1", "b", "x")
	m.Submit("s1", "a", "y")
	m.Submit("s1", "drained", "z")
	_, _ = m.Dequeue("s1", "drained")

	assert.Equal(t, []string{"a", "b"}, m.ClientsWithPending("s1"))
	assert.Nil(t, m.ClientsWithPending("empty-session"))
}

func TestClearSession(t *testing.T) {
	m := NewManager()

	m.Submit("s1", "c1", "x")
	m.Submit("s2", "c1", "y")
	m.ClearSession("s1")

	assert.Zero(t, m.QueueSize("s1", "c1"))
	assert.Equal(t, 1, m.QueueSize("s2", "c1"))
}

func TestConcurrentSubmissionsKeepUniqueIDsAndCount(t *testing.T) {
	m := NewManager()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Submit("s1", "c1", fmt.Sprintf("cmd-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, m.QueueSize("s1", "c1"))

	seen := make(map[string]bool, n)
	for {
		cmd, ok := m.Dequeue("s1", "c1")
		if !ok {
			break
		}
		assert.False(t, seen[cmd.ID], "duplicate command id %s", cmd.ID)
		seen[cmd.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestConcurrentDequeuesNeverShareAHead(t *testing.T) {
	m := NewManager()

	const n = 50
	for i := 0; i < n; i++ {
		m.Submit("s1", "c1", fmt.Sprintf("cmd-%d", i))
	}

	var wg sync.WaitGroup
	results := make(chan Command, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cmd, ok := m.Dequeue("s1", "c1"); ok {
				results <- cmd
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for cmd := range results {
		assert.False(t, seen[cmd.ID], "command %s delivered twice", cmd.ID)
		seen[cmd.ID] = true
	}
	assert.Len(t, seen, n)
	assert.Zero(t, m.QueueSize("s1", "c1"))
}
