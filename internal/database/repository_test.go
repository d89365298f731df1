package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	return NewRepository(db)
}

func TestRecordFlushAndGetRecordsSince(t *testing.T) {
	repo := newTestRepository(t)

	repo.RecordFlush([]usage.Entry{
		{AppName: "Code", DurationSeconds: 30},
		{AppName: "Google Chrome", SiteURL: "https://github.com", DurationSeconds: 20},
	}, true)

	records, err := repo.GetRecordsSince(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GetRecordsSince() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	// App names are stored lowercase
	if records[0].AppName != "code" {
		t.Errorf("AppName = %q, want code", records[0].AppName)
	}
	if !records[0].Delivered {
		t.Error("record not marked delivered")
	}

	// Records before the window are excluded
	future, err := repo.GetRecordsSince(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("GetRecordsSince() error: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("len(records) since future = %d, want 0", len(future))
	}
}

func TestRecordFlushEmptyWritesNothing(t *testing.T) {
	repo := newTestRepository(t)

	repo.RecordFlush(nil, true)

	records, err := repo.GetRecordsSince(time.Time{})
	if err != nil {
		t.Fatalf("GetRecordsSince() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestDeleteOldRecords(t *testing.T) {
	repo := newTestRepository(t)

	repo.RecordFlush([]usage.Entry{
		{AppName: "Code", DurationSeconds: 10},
		{AppName: "Slack", DurationSeconds: 10},
	}, true)

	// Cutoff in the past removes nothing
	removed, err := repo.DeleteOldRecords(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldRecords() error: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	// Cutoff in the future removes everything
	removed, err = repo.DeleteOldRecords(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldRecords() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	records, err := repo.GetRecordsSince(time.Time{})
	if err != nil {
		t.Fatalf("GetRecordsSince() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) after delete = %d, want 0", len(records))
	}
}

func TestGetAppSummarySinceSkipsUndelivered(t *testing.T) {
	repo := newTestRepository(t)

	repo.RecordFlush([]usage.Entry{{AppName: "Code", DurationSeconds: 30}}, true)
	repo.RecordFlush([]usage.Entry{{AppName: "Code", DurationSeconds: 10}}, true)
	repo.RecordFlush([]usage.Entry{{AppName: "Code", DurationSeconds: 99}}, false)

	summaries, err := repo.GetAppSummarySince(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GetAppSummarySince() error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d, want 1", len(summaries))
	}
	if summaries[0].TotalSeconds != 40 {
		t.Errorf("TotalSeconds = %d, want 40", summaries[0].TotalSeconds)
	}
	if summaries[0].EntryCount != 2 {
		t.Errorf("EntryCount = %d, want 2", summaries[0].EntryCount)
	}
}
