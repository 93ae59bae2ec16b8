package blueprint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrArtifactNotFound is returned when an artifact id does not exist.
var ErrArtifactNotFound = errors.New("blueprint artifact not found")

// Artifact is one persisted blueprint. Artifacts are immutable: regeneration
// inserts a new row rather than updating an old one.
type Artifact struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Summary    string    `json:"summary"`
	Blueprint  Blueprint `json:"blueprint"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists blueprint artifacts and reads the auxiliary context used
// during generation.
type Store interface {
	SaveArtifact(ctx context.Context, artifact Artifact) (Artifact, error)
	GetArtifact(ctx context.Context, artifactID string) (Artifact, error)
	ListArtifacts(ctx context.Context, campaignID string, limit int) ([]Artifact, error)
	ListCompletedAnalyses(ctx context.Context, campaignID string, limit int) ([]Analysis, error)
	LatestStrategicBrief(ctx context.Context, campaignID string) (*StrategicBrief, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) SaveArtifact(ctx context.Context, artifact Artifact) (Artifact, error) {
	if s == nil || s.db == nil {
		return Artifact{}, errors.New("blueprint store unavailable")
	}

	blueprintJSON, err := json.Marshal(artifact.Blueprint)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode blueprint: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO brieforge.campaign_blueprints (campaign_id, summary, blueprint, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, artifact.CampaignID, artifact.Summary, blueprintJSON).Scan(&artifact.ID, &artifact.CreatedAt)
	if err != nil {
		return Artifact{}, fmt.Errorf("insert blueprint artifact: %w", err)
	}
	return artifact, nil
}

func (s *SQLStore) GetArtifact(ctx context.Context, artifactID string) (Artifact, error) {
	if s == nil || s.db == nil {
		return Artifact{}, errors.New("blueprint store unavailable")
	}

	var artifact Artifact
	var blueprintJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, campaign_id, summary, blueprint, created_at
		FROM brieforge.campaign_blueprints
		WHERE id = $1
	`, artifactID).Scan(&artifact.ID, &artifact.CampaignID, &artifact.Summary, &blueprintJSON, &artifact.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, ErrArtifactNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("get blueprint artifact: %w", err)
	}
	if err := json.Unmarshal(blueprintJSON, &artifact.Blueprint); err != nil {
		return Artifact{}, fmt.Errorf("decode blueprint: %w", err)
	}
	return artifact, nil
}

func (s *SQLStore) ListArtifacts(ctx context.Context, campaignID string, limit int) ([]Artifact, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("blueprint store unavailable")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, summary, blueprint, created_at
		FROM brieforge.campaign_blueprints
		WHERE campaign_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list blueprint artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var artifact Artifact
		var blueprintJSON []byte
		if err := rows.Scan(&artifact.ID, &artifact.CampaignID, &artifact.Summary, &blueprintJSON, &artifact.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blueprint artifact: %w", err)
		}
		if err := json.Unmarshal(blueprintJSON, &artifact.Blueprint); err != nil {
			return nil, fmt.Errorf("decode blueprint: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blueprint artifacts: %w", err)
	}
	return artifacts, nil
}

func (s *SQLStore) ListCompletedAnalyses(ctx context.Context, campaignID string, limit int) ([]Analysis, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("blueprint store unavailable")
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, analysis_type, summary, confidence_score, created_at
		FROM brieforge.signal_analyses
		WHERE campaign_id = $1 AND status = 'completed'
		ORDER BY created_at DESC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var analysis Analysis
		if err := rows.Scan(&analysis.ID, &analysis.CampaignID, &analysis.AnalysisType,
			&analysis.Summary, &analysis.ConfidenceScore, &analysis.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, analysis)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return analyses, nil
}

func (s *SQLStore) LatestStrategicBrief(ctx context.Context, campaignID string) (*StrategicBrief, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("blueprint store unavailable")
	}

	var brief StrategicBrief
	err := s.db.QueryRowContext(ctx, `
		SELECT id, campaign_id, executive_summary, created_at
		FROM brieforge.strategic_briefs
		WHERE campaign_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, campaignID).Scan(&brief.ID, &brief.CampaignID, &brief.ExecutiveSummary, &brief.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get strategic brief: %w", err)
	}
	return &brief, nil
}
