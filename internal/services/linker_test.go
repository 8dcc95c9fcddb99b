package services

import (
	"context"
	"errors"
	"testing"

	"awning-admin-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTaskStore serves canned tasks and records workflow link-backs
type fakeTaskStore struct {
	tasks     map[int64]*models.Task
	linkErr   error
	linked    map[int64]int64 // taskID -> workflowID
	linkCalls int
}

func newFakeTaskStore(tasks ...*models.Task) *fakeTaskStore {
	store := &fakeTaskStore{
		tasks:  make(map[int64]*models.Task),
		linked: make(map[int64]int64),
	}
	for _, task := range tasks {
		store.tasks[task.ID] = task
	}
	return store
}

func (f *fakeTaskStore) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	return f.tasks[id], nil
}

func (f *fakeTaskStore) LinkWorkflowToTask(ctx context.Context, id, workflowID int64) error {
	f.linkCalls++
	if f.linkErr != nil {
		return f.linkErr
	}
	f.linked[id] = workflowID
	return nil
}

func TestLinkerPendingRefresh(t *testing.T) {
	linker := NewLinker(newFakeTaskStore(), &fakeWorkflowLookup{})

	// Nothing pending: no refresh
	assert.False(t, linker.OnReturnToInbox(context.Background()))

	linker.RecordPendingRefresh()
	assert.True(t, linker.OnReturnToInbox(context.Background()))

	// Consumed: a second return does not refresh again
	assert.False(t, linker.OnReturnToInbox(context.Background()))
}

func TestLinkerConsumesPendingLink(t *testing.T) {
	ctx := context.Background()

	t.Run("newest workflow by id wins", func(t *testing.T) {
		store := newFakeTaskStore(taskWithCustomer(1, 10, models.CategoryInitialEnquiry))
		lookup := &fakeWorkflowLookup{workflows: map[int64][]models.Workflow{
			10: {
				{ID: 100, CustomerID: 10},
				{ID: 103, CustomerID: 10}, // created during the departure
				{ID: 101, CustomerID: 10},
			},
		}}
		linker := NewLinker(store, lookup)
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		assert.True(t, linker.OnReturnToInbox(ctx))
		assert.Equal(t, int64(103), store.linked[1])
	})

	t.Run("consumed exactly once", func(t *testing.T) {
		store := newFakeTaskStore(taskWithCustomer(1, 10, models.CategoryInitialEnquiry))
		lookup := &fakeWorkflowLookup{workflows: map[int64][]models.Workflow{
			10: {{ID: 100, CustomerID: 10}},
		}}
		linker := NewLinker(store, lookup)
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		linker.OnReturnToInbox(ctx)
		linker.OnReturnToInbox(ctx)
		assert.Equal(t, 1, store.linkCalls)

		_, pending := linker.PendingLink(1)
		assert.False(t, pending)
	})

	t.Run("task without a customer is skipped", func(t *testing.T) {
		store := newFakeTaskStore(&models.Task{ID: 1, Category: models.CategoryInitialEnquiry})
		linker := NewLinker(store, &fakeWorkflowLookup{})
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		assert.False(t, linker.OnReturnToInbox(ctx))
		assert.Zero(t, store.linkCalls)
	})

	t.Run("customer with no workflows is skipped", func(t *testing.T) {
		store := newFakeTaskStore(taskWithCustomer(1, 10, models.CategoryInitialEnquiry))
		linker := NewLinker(store, &fakeWorkflowLookup{workflows: map[int64][]models.Workflow{}})
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		assert.False(t, linker.OnReturnToInbox(ctx))
		assert.Zero(t, store.linkCalls)
	})

	t.Run("lookup failure is swallowed", func(t *testing.T) {
		store := newFakeTaskStore(taskWithCustomer(1, 10, models.CategoryInitialEnquiry))
		linker := NewLinker(store, &fakeWorkflowLookup{err: errors.New("connection reset")})
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		assert.False(t, linker.OnReturnToInbox(ctx))
		// The link is gone even though it failed; the user can re-trigger
		// it by creating another workflow
		_, pending := linker.PendingLink(1)
		assert.False(t, pending)
	})

	t.Run("link write failure is swallowed", func(t *testing.T) {
		store := newFakeTaskStore(taskWithCustomer(1, 10, models.CategoryInitialEnquiry))
		store.linkErr = errors.New("write conflict")
		lookup := &fakeWorkflowLookup{workflows: map[int64][]models.Workflow{
			10: {{ID: 100, CustomerID: 10}},
		}}
		linker := NewLinker(store, lookup)
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		assert.False(t, linker.OnReturnToInbox(ctx))
	})

	t.Run("successful link still refreshes without an explicit flag", func(t *testing.T) {
		store := newFakeTaskStore(taskWithCustomer(1, 10, models.CategoryInitialEnquiry))
		lookup := &fakeWorkflowLookup{workflows: map[int64][]models.Workflow{
			10: {{ID: 100, CustomerID: 10}},
		}}
		linker := NewLinker(store, lookup)
		linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")

		require.True(t, linker.OnReturnToInbox(ctx))
	})
}

func TestLinkerRecordOverwrites(t *testing.T) {
	linker := NewLinker(newFakeTaskStore(), &fakeWorkflowLookup{})
	linker.RecordPendingLink(1, models.CategoryInitialEnquiry, "email-1")
	linker.RecordPendingLink(1, models.CategoryQuoteCreation, "email-2")

	link, ok := linker.PendingLink(1)
	require.True(t, ok)
	assert.Equal(t, models.CategoryQuoteCreation, link.Category)
	assert.Equal(t, "email-2", link.IncomingEmailID)
}
