package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"awning-admin-api/internal/models"
)

// AuditStore is the persistence collaborator behind the two audit readers
// and the best-effort audit writer
type AuditStore interface {
	InsertAuditEntry(ctx context.Context, entry models.AuditEntry) error
	InsertTaskHistory(ctx context.Context, entry models.TaskHistoryEntry) error
	ListAuditEntries(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int64, error)
	ListTaskHistory(ctx context.Context, filter models.AuditFilter) ([]models.TaskHistoryEntry, int64, error)
}

// AuditPage is one loaded page of either audit log
type AuditPage[T any] struct {
	Entries    []T   `json:"entries"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	PageWindow []int `json:"pageWindow"`
}

// AuditService serves the two independent paginated audit readers (entity
// audit log and task-history log) and takes the best-effort audit writes
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// RecordEntityAction writes an entity audit row as a fire-and-forget side
// channel: failures are logged and never block the primary action.
func (s *AuditService) RecordEntityAction(entityType string, entityID int64, action string, userID int64, userName, details string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entry := models.AuditEntry{
			EntityType: entityType,
			EntityID:   entityID,
			Action:     action,
			UserID:     userID,
			UserName:   userName,
			Details:    details,
			CreatedAt:  time.Now(),
		}
		if err := s.store.InsertAuditEntry(ctx, entry); err != nil {
			log.Printf("WARNING: failed to write audit entry for %s %d (%s): %v", entityType, entityID, action, err)
		}
	}()
}

// RecordTaskEvent writes a task-history row, best-effort like
// RecordEntityAction
func (s *AuditService) RecordTaskEvent(taskID int64, action string, userID int64, userName, oldValue, newValue string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entry := models.TaskHistoryEntry{
			TaskID:    taskID,
			Action:    action,
			UserID:    userID,
			UserName:  userName,
			OldValue:  oldValue,
			NewValue:  newValue,
			CreatedAt: time.Now(),
		}
		if err := s.store.InsertTaskHistory(ctx, entry); err != nil {
			log.Printf("WARNING: failed to write task history for task %d (%s): %v", taskID, action, err)
		}
	}()
}

// LoadAuditPage loads one page of the entity audit log
func (s *AuditService) LoadAuditPage(ctx context.Context, filter models.AuditFilter) (*AuditPage[models.AuditEntry], error) {
	entries, total, err := s.store.ListAuditEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit page: %w", err)
	}
	return buildPage(entries, filter, total), nil
}

// LoadTaskHistoryPage loads one page of the task-history log
func (s *AuditService) LoadTaskHistoryPage(ctx context.Context, filter models.AuditFilter) (*AuditPage[models.TaskHistoryEntry], error) {
	entries, total, err := s.store.ListTaskHistory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load task history page: %w", err)
	}
	return buildPage(entries, filter, total), nil
}

func buildPage[T any](entries []T, filter models.AuditFilter, total int64) *AuditPage[T] {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	totalPages := TotalPages(total, pageSize)
	return &AuditPage[T]{
		Entries:    entries,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		PageWindow: PageWindow(page, totalPages),
	}
}

// ExportAuditCSV formats the currently loaded page (not the full result
// set) as CSV
func ExportAuditCSV(entries []models.AuditEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "entityType", "entityId", "action", "user", "details", "createdAt"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.EntityType,
			strconv.FormatInt(e.EntityID, 10),
			e.Action,
			e.UserName,
			e.Details,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportTaskHistoryCSV formats the currently loaded task-history page as CSV
func ExportTaskHistoryCSV(entries []models.TaskHistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "taskId", "action", "user", "oldValue", "newValue", "createdAt"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.TaskID, 10),
			e.Action,
			e.UserName,
			e.OldValue,
			e.NewValue,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
