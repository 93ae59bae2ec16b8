package campaign

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a campaign does not exist in the workspace.
var ErrNotFound = errors.New("campaign not found")

type Store interface {
	Get(ctx context.Context, id, workspaceID string) (Campaign, error)
	Create(ctx context.Context, c Campaign) (Campaign, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, id, workspaceID string) (Campaign, error) {
	if s == nil || s.db == nil {
		return Campaign{}, errors.New("campaign store unavailable")
	}

	var c Campaign
	var briefJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, brief, created_at
		FROM brieforge.campaigns
		WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID).Scan(&c.ID, &c.WorkspaceID, &c.Name, &briefJSON, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	if err != nil {
		return Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	if len(briefJSON) > 0 {
		if err := json.Unmarshal(briefJSON, &c.Brief); err != nil {
			return Campaign{}, fmt.Errorf("decode brief: %w", err)
		}
	}
	return c, nil
}

func (s *SQLStore) Create(ctx context.Context, c Campaign) (Campaign, error) {
	if s == nil || s.db == nil {
		return Campaign{}, errors.New("campaign store unavailable")
	}

	briefJSON, err := json.Marshal(c.Brief)
	if err != nil {
		return Campaign{}, fmt.Errorf("encode brief: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO brieforge.campaigns (workspace_id, name, brief, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, c.WorkspaceID, c.Name, briefJSON).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Campaign{}, fmt.Errorf("insert campaign: %w", err)
	}
	return c, nil
}
