package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Store persists signal enrichments.
type Store interface {
	Save(ctx context.Context, enrichment Enrichment) (Enrichment, error)
	ExistsSemantic(ctx context.Context, signalID string) (bool, error)
	ListForSignals(ctx context.Context, signalIDs []string) ([]Enrichment, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, enrichment Enrichment) (Enrichment, error) {
	if s == nil || s.db == nil {
		return Enrichment{}, errors.New("enrichment store unavailable")
	}

	entitiesJSON, err := json.Marshal(enrichment.Entities)
	if err != nil {
		return Enrichment{}, fmt.Errorf("encode entities: %w", err)
	}
	featuresJSON, err := json.Marshal(enrichment.Features)
	if err != nil {
		return Enrichment{}, fmt.Errorf("encode features: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO brieforge.signal_enrichments
			(signal_id, enrichment_type, entities, sentiment, trend_score, features, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, enrichment.SignalID, enrichment.EnrichmentType, entitiesJSON,
		enrichment.Sentiment, enrichment.TrendScore, featuresJSON,
	).Scan(&enrichment.ID, &enrichment.CreatedAt)
	if err != nil {
		return Enrichment{}, fmt.Errorf("insert enrichment: %w", err)
	}
	return enrichment, nil
}

func (s *SQLStore) ExistsSemantic(ctx context.Context, signalID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("enrichment store unavailable")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM brieforge.signal_enrichments
			WHERE signal_id = $1 AND enrichment_type = $2
		)
	`, signalID, EnrichmentTypeSemantic).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrichment: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) ListForSignals(ctx context.Context, signalIDs []string) ([]Enrichment, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("enrichment store unavailable")
	}
	if len(signalIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, signal_id, enrichment_type, entities, sentiment, trend_score, features, created_at
		FROM brieforge.signal_enrichments
		WHERE signal_id = ANY($1) AND enrichment_type = $2
		ORDER BY created_at ASC
	`, pq.Array(signalIDs), EnrichmentTypeSemantic)
	if err != nil {
		return nil, fmt.Errorf("list enrichments: %w", err)
	}
	defer rows.Close()

	var enrichments []Enrichment
	for rows.Next() {
		var enrichment Enrichment
		var entitiesJSON, featuresJSON []byte
		if err := rows.Scan(
			&enrichment.ID, &enrichment.SignalID, &enrichment.EnrichmentType,
			&entitiesJSON, &enrichment.Sentiment, &enrichment.TrendScore,
			&featuresJSON, &enrichment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrichment: %w", err)
		}
		if len(entitiesJSON) > 0 {
			if err := json.Unmarshal(entitiesJSON, &enrichment.Entities); err != nil {
				return nil, fmt.Errorf("decode entities: %w", err)
			}
		}
		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &enrichment.Features); err != nil {
				return nil, fmt.Errorf("decode features: %w", err)
			}
		}
		enrichments = append(enrichments, enrichment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichments: %w", err)
	}
	return enrichments, nil
}
