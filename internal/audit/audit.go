// Package audit provides an append-only event trail for workspace actions.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event is one recorded action.
type Event struct {
	ID          string                 `json:"id"`
	WorkspaceID string                 `json:"workspace_id"`
	UserID      string                 `json:"user_id,omitempty"`
	EventType   string                 `json:"event_type"`
	Source      string                 `json:"source"`
	Details     map[string]interface{} `json:"details,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type Logger interface {
	Record(ctx context.Context, event Event) error
	ListEvents(ctx context.Context, workspaceID, eventType string, limit int) ([]Event, error)
}

type SQLLogger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *SQLLogger {
	return &SQLLogger{db: db}
}

func (l *SQLLogger) Record(ctx context.Context, event Event) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger unavailable")
	}

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO brieforge.audit_logs (workspace_id, user_id, event_type, source, details, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, event.WorkspaceID, nullable(event.UserID), event.EventType, event.Source, detailsJSON)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (l *SQLLogger) ListEvents(ctx context.Context, workspaceID, eventType string, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("audit logger unavailable")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, workspace_id, user_id, event_type, source, details, created_at
		FROM brieforge.audit_logs
		WHERE workspace_id = $1
	`
	args := []any{workspaceID}
	if eventType != "" {
		query += " AND event_type = $2"
		args = append(args, eventType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var userID sql.NullString
		var detailsJSON []byte
		if err := rows.Scan(&event.ID, &event.WorkspaceID, &userID, &event.EventType, &event.Source, &detailsJSON, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if userID.Valid {
			event.UserID = userID.String
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
				return nil, fmt.Errorf("decode details: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
