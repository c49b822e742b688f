package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/routerchat/model"
)

func TestNew_SeedsInOrder(t *testing.T) {
	s := New(model.GreetingTurn(""), model.UserTurn("hi"))

	turns := s.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleAssistant, turns[0].Role)
	assert.Equal(t, model.Greeting, turns[0].Content)
	assert.Equal(t, "hi", turns[1].Content)
}

func TestAppend_ReturnsSnapshot(t *testing.T) {
	s := New(model.GreetingTurn(""))

	snap := s.Append(model.UserTurn("one"))
	require.Len(t, snap, 2)
	assert.Equal(t, "one", snap[1].Content)
	assert.Equal(t, 2, s.Len())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "one", last.Content)
}

func TestTurns_DoesNotAliasStorage(t *testing.T) {
	s := New()
	s.Append(model.AssistantTurn("reply", model.Meta{ModelUsed: "small"}))

	turns := s.Turns()
	turns[0].Content = "changed"
	turns[0].Meta.ModelUsed = "changed"

	again := s.Turns()
	assert.Equal(t, "reply", again[0].Content)
	assert.Equal(t, "small", again[0].Meta.ModelUsed)
}

func TestObserve_CalledAfterEveryAppend(t *testing.T) {
	s := New(model.GreetingTurn(""))

	var seen []int
	s.Observe(func(turns []model.Turn) {
		seen = append(seen, len(turns))
	})
	s.Observe(nil)

	s.Append(model.UserTurn("a"))
	s.Append(model.FallbackTurn())

	assert.Equal(t, []int{2, 3}, seen)
}

func TestObserve_MayReadStore(t *testing.T) {
	s := New()
	var lenInObserver int
	s.Observe(func([]model.Turn) {
		lenInObserver = s.Len()
	})

	s.Append(model.UserTurn("a"))
	assert.Equal(t, 1, lenInObserver)
}

func TestLast_Empty(t *testing.T) {
	_, ok := New().Last()
	assert.False(t, ok)
}

func TestAppend_Concurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(model.UserTurn("x"))
			_ = s.Turns()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
