package signals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type Store interface {
	Save(ctx context.Context, signal Signal) (Signal, error)
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]Signal, error)
	ListTopByRelevance(ctx context.Context, campaignID string, limit int) ([]Signal, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, signal Signal) (Signal, error) {
	if s == nil || s.db == nil {
		return Signal{}, errors.New("signal store unavailable")
	}

	evidenceJSON, err := json.Marshal(signal.Evidence)
	if err != nil {
		return Signal{}, fmt.Errorf("encode evidence: %w", err)
	}
	provenanceJSON, err := json.Marshal(signal.Provenance)
	if err != nil {
		return Signal{}, fmt.Errorf("encode provenance: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO brieforge.signals (
			campaign_id,
			source,
			search_method,
			query,
			evidence,
			relevance_score,
			provenance,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`,
		signal.CampaignID,
		signal.Source,
		signal.SearchMethod,
		signal.Query,
		evidenceJSON,
		signal.RelevanceScore,
		provenanceJSON,
	).Scan(&signal.ID, &signal.CreatedAt)
	if err != nil {
		return Signal{}, fmt.Errorf("insert signal: %w", err)
	}
	return signal, nil
}

func (s *SQLStore) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]Signal, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("signal store unavailable")
	}
	if limit <= 0 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, source, search_method, query, evidence, relevance_score, provenance, created_at
		FROM brieforge.signals
		WHERE campaign_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()
	return collectSignals(rows)
}

func (s *SQLStore) ListTopByRelevance(ctx context.Context, campaignID string, limit int) ([]Signal, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("signal store unavailable")
	}
	if limit <= 0 {
		limit = 75
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, source, search_method, query, evidence, relevance_score, provenance, created_at
		FROM brieforge.signals
		WHERE campaign_id = $1
		ORDER BY relevance_score DESC, created_at ASC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list top signals: %w", err)
	}
	defer rows.Close()
	return collectSignals(rows)
}

func collectSignals(rows *sql.Rows) ([]Signal, error) {
	var signals []Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return signals, nil
}

type signalScanner interface {
	Scan(dest ...any) error
}

func scanSignal(s signalScanner) (Signal, error) {
	var sig Signal
	var evidenceJSON, provenanceJSON []byte
	if err := s.Scan(
		&sig.ID,
		&sig.CampaignID,
		&sig.Source,
		&sig.SearchMethod,
		&sig.Query,
		&evidenceJSON,
		&sig.RelevanceScore,
		&provenanceJSON,
		&sig.CreatedAt,
	); err != nil {
		return Signal{}, fmt.Errorf("scan signal: %w", err)
	}
	if len(evidenceJSON) > 0 {
		if err := json.Unmarshal(evidenceJSON, &sig.Evidence); err != nil {
			return Signal{}, fmt.Errorf("decode evidence: %w", err)
		}
	}
	if len(provenanceJSON) > 0 {
		if err := json.Unmarshal(provenanceJSON, &sig.Provenance); err != nil {
			return Signal{}, fmt.Errorf("decode provenance: %w", err)
		}
	}
	return sig, nil
}
