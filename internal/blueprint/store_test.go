package blueprint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSaveArtifact(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	mock.ExpectQuery("INSERT INTO brieforge\\.campaign_blueprints").WithArgs(
		"c1",
		"Synthesized 2 signals",
		sqlmock.AnyArg(),
	).WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("art-1", time.Now()))

	saved, err := store.SaveArtifact(context.Background(), Artifact{
		CampaignID: "c1",
		Summary:    "Synthesized 2 signals",
		Blueprint:  Blueprint{CampaignID: "c1", Summary: "Synthesized 2 signals"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "art-1" {
		t.Fatalf("unexpected id %q", saved.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreGetArtifactNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	mock.ExpectQuery("SELECT id, campaign_id, summary, blueprint, created_at\\s+FROM brieforge\\.campaign_blueprints").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "summary", "blueprint", "created_at"}))

	if _, err := store.GetArtifact(context.Background(), "missing"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestStoreListArtifacts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	rows := sqlmock.NewRows([]string{"id", "campaign_id", "summary", "blueprint", "created_at"}).
		AddRow("art-1", "c1", "s", []byte(`{"campaign_id":"c1","summary":"s","metadata":{"generation_method":"rule_based"}}`), time.Now())
	mock.ExpectQuery("SELECT id, campaign_id, summary, blueprint, created_at\\s+FROM brieforge\\.campaign_blueprints").
		WithArgs("c1", 20).
		WillReturnRows(rows)

	artifacts, err := store.ListArtifacts(context.Background(), "c1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Blueprint.Metadata.GenerationMethod != "rule_based" {
		t.Fatalf("unexpected blueprint %+v", artifacts[0].Blueprint)
	}
}

func TestStoreListCompletedAnalyses(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	rows := sqlmock.NewRows([]string{"id", "campaign_id", "analysis_type", "summary", "confidence_score", "created_at"}).
		AddRow("an-1", "c1", "competitive", "HelloFresh dominates", 0.8, time.Now())
	mock.ExpectQuery("SELECT id, campaign_id, analysis_type, summary, confidence_score, created_at\\s+FROM brieforge\\.signal_analyses").
		WithArgs("c1", 5).
		WillReturnRows(rows)

	analyses, err := store.ListCompletedAnalyses(context.Background(), "c1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(analyses) != 1 || analyses[0].AnalysisType != "competitive" {
		t.Fatalf("unexpected analyses %+v", analyses)
	}
}

func TestStoreLatestStrategicBriefMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	mock.ExpectQuery("SELECT id, campaign_id, executive_summary, created_at\\s+FROM brieforge\\.strategic_briefs").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "executive_summary", "created_at"}))

	brief, err := store.LatestStrategicBrief(context.Background(), "c1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if brief != nil {
		t.Fatalf("expected nil brief when none stored")
	}
}
