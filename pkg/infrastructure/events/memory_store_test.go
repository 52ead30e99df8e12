package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingHandler struct {
	mu     sync.Mutex
	types  []string
	failOn string
}

func (h *collectingHandler) Handle(event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.types = append(h.types, event.Type())
	if event.Type() == h.failOn {
		return errors.New("handler failure")
	}
	return nil
}

func (h *collectingHandler) CanHandle(eventType string) bool {
	return true
}

func TestInMemoryEventStore_VersionsPerStream(t *testing.T) {
	store := NewInMemoryEventStore(logr.Discard())

	require.NoError(t, store.AppendEvent("run-1", NewEvent(FormulationBuiltEvent, "run-1", FormulationBuilt{Variables: 4})))
	require.NoError(t, store.AppendEvent("run-2", NewEvent(FormulationBuiltEvent, "run-2", FormulationBuilt{Variables: 6})))
	require.NoError(t, store.AppendEvent("run-1", NewEvent(SolveCompletedEvent, "run-1", SolveCompleted{Status: "OPTIMAL"})))

	run1, err := store.ReadEvents("run-1", 0)
	require.NoError(t, err)
	require.Len(t, run1, 2)
	assert.Equal(t, 1, run1[0].Version())
	assert.Equal(t, 2, run1[1].Version())
	assert.Equal(t, SolveCompletedEvent, run1[1].Type())
	assert.Equal(t, "OPTIMAL", run1[1].Data().(SolveCompleted).Status)

	fromTwo, err := store.ReadEvents("run-1", 2)
	require.NoError(t, err)
	assert.Len(t, fromTwo, 1)

	missing, err := store.ReadEvents("run-3", 1)
	require.NoError(t, err)
	assert.Empty(t, missing)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"run-1", "run-2"}, store.StreamIDs())
}

func TestInMemoryEventStore_RejectsBadInput(t *testing.T) {
	store := NewInMemoryEventStore(logr.Logger{})
	assert.Error(t, store.AppendEvent("", NewEvent(RunFailedEvent, "", nil)))
	assert.Error(t, store.AppendEvent("run", nil))
	assert.Error(t, store.Subscribe([]string{RunFailedEvent}, nil))
}

func TestInMemoryEventStore_Subscribers(t *testing.T) {
	store := NewInMemoryEventStore(logr.Discard())
	handler := &collectingHandler{failOn: RunFailedEvent}
	require.NoError(t, store.Subscribe([]string{SolveCompletedEvent, RunFailedEvent}, handler))

	require.NoError(t, store.AppendEvent("run", NewEvent(FormulationBuiltEvent, "run", nil)))
	require.NoError(t, store.AppendEvent("run", NewEvent(SolveCompletedEvent, "run", nil)))
	require.NoError(t, store.AppendEvent("run", NewEvent(RunFailedEvent, "run", RunFailed{Stage: "solve"})))
	store.Wait()

	handler.mu.Lock()
	assert.ElementsMatch(t, []string{SolveCompletedEvent, RunFailedEvent}, handler.types)
	handler.mu.Unlock()

	require.NoError(t, store.Unsubscribe(handler))
	require.NoError(t, store.AppendEvent("run", NewEvent(SolveCompletedEvent, "run", nil)))
	store.Wait()

	handler.mu.Lock()
	assert.Len(t, handler.types, 2)
	handler.mu.Unlock()
}
