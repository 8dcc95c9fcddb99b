package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"awning-admin-api/internal/config"
	"awning-admin-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFollowUpDB serves canned stale workflows and records upserts
type fakeFollowUpDB struct {
	stale      []models.Workflow
	staleErr   error
	customers  map[int64]*models.Customer
	upserted   []models.FollowUp
	upsertErr  error
	open       []models.FollowUp
	doneIDs    []int64
	lastCutoff time.Time
}

func (f *fakeFollowUpDB) FindStaleEnquiryWorkflows(ctx context.Context, cutoff time.Time) ([]models.Workflow, error) {
	f.lastCutoff = cutoff
	if f.staleErr != nil {
		return nil, f.staleErr
	}
	return f.stale, nil
}

func (f *fakeFollowUpDB) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeFollowUpDB) UpsertFollowUp(ctx context.Context, followUp models.FollowUp) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, followUp)
	return nil
}

func (f *fakeFollowUpDB) ListOpenFollowUps(ctx context.Context) ([]models.FollowUp, error) {
	return f.open, nil
}

func (f *fakeFollowUpDB) MarkFollowUpDone(ctx context.Context, id int64) error {
	f.doneIDs = append(f.doneIDs, id)
	return nil
}

func followUpConfig() config.FollowUpConfig {
	return config.FollowUpConfig{StaleAfterDays: 14, CronSchedule: "0 0 7 * * *"}
}

func TestGenerateAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("records a follow-up per stale workflow", func(t *testing.T) {
		db := &fakeFollowUpDB{
			stale: []models.Workflow{
				{ID: 100, CustomerID: 10, UpdatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
				{ID: 101, CustomerID: 11, UpdatedAt: time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)},
			},
			customers: map[int64]*models.Customer{
				10: {ID: 10, Name: "Acme Blinds"},
			},
			open: []models.FollowUp{{ID: 1, WorkflowID: 100}},
		}
		service := NewFollowUpService(db, nil, followUpConfig())

		open, err := service.GenerateAndList(ctx)
		require.NoError(t, err)

		require.Len(t, db.upserted, 2)
		assert.Equal(t, "Acme Blinds", db.upserted[0].CustomerName)
		assert.Contains(t, db.upserted[0].Reason, "2026-01-05")
		// Missing customer record falls back to an id-based name
		assert.Equal(t, "customer 11", db.upserted[1].CustomerName)

		assert.Len(t, open, 1)
	})

	t.Run("cutoff honours the configured staleness window", func(t *testing.T) {
		db := &fakeFollowUpDB{}
		service := NewFollowUpService(db, nil, followUpConfig())

		_, err := service.GenerateAndList(ctx)
		require.NoError(t, err)

		expected := time.Now().AddDate(0, 0, -14)
		assert.WithinDuration(t, expected, db.lastCutoff, time.Minute)
	})

	t.Run("query failure aborts the cycle", func(t *testing.T) {
		db := &fakeFollowUpDB{staleErr: errors.New("connection reset")}
		service := NewFollowUpService(db, nil, followUpConfig())

		_, err := service.GenerateAndList(ctx)
		assert.Error(t, err)
	})

	t.Run("a failed upsert does not abort the sweep", func(t *testing.T) {
		db := &fakeFollowUpDB{
			stale:     []models.Workflow{{ID: 100, CustomerID: 10}},
			upsertErr: errors.New("write conflict"),
			open:      []models.FollowUp{},
		}
		service := NewFollowUpService(db, nil, followUpConfig())

		_, err := service.GenerateAndList(ctx)
		assert.NoError(t, err)
	})
}

func TestMarkDone(t *testing.T) {
	db := &fakeFollowUpDB{}
	service := NewFollowUpService(db, nil, followUpConfig())

	require.NoError(t, service.MarkDone(context.Background(), 5))
	assert.Equal(t, []int64{5}, db.doneIDs)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := followUpConfig()
	cfg.CronSchedule = "not a schedule"
	service := NewFollowUpService(&fakeFollowUpDB{}, nil, cfg)

	assert.Error(t, service.Start())
}

func TestStartAndStop(t *testing.T) {
	service := NewFollowUpService(&fakeFollowUpDB{}, nil, followUpConfig())
	require.NoError(t, service.Start())
	service.Stop()
}
