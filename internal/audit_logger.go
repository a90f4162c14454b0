package internal

import (
	"context"
	"fmt"
	"strings"
)

// RunAuditLogger records completed refresh runs so operators can inspect
// what every pass did after the fact.
type RunAuditLogger interface {
	LogRun(ctx context.Context, summary RefreshSummary) error
}

// RunLogStorage persists one row per completed refresh run.
type RunLogStorage interface {
	Insert(ctx context.Context, summary RefreshSummary) error
}

func NewStorageRunAuditLogger(storage RunLogStorage) *StorageRunAuditLogger {
	return &StorageRunAuditLogger{runLogStorage: storage}
}

type StorageRunAuditLogger struct {
	runLogStorage RunLogStorage
}

func (l *StorageRunAuditLogger) LogRun(ctx context.Context, summary RefreshSummary) error {
	if strings.TrimSpace(summary.RunID) == "" {
		return fmt.Errorf("run id is empty")
	}

	if err := l.runLogStorage.Insert(ctx, summary); err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}
