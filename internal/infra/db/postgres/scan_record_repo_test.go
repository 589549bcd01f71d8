//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

func TestScanRecordRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	repo := NewScanRecordRepo(testPool)

	setup := func(t *testing.T) {
		t.Helper()
		cleanup(t)
		seedBusiness(t, "biz-1")
		seedUser(t, "user-1")
	}

	t.Run("Find before any scan is ErrNotFound", func(t *testing.T) {
		setup(t)
		if _, err := repo.Find(ctx, repository.NoTX, "user-1", "biz-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("Upsert inserts then replaces the pair's counters", func(t *testing.T) {
		setup(t)
		first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

		if err := repo.Upsert(ctx, repository.NoTX, &model.ScanRecord{
			UserID: "user-1", BusinessID: "biz-1", TotalScans: 1, LastScanAt: first,
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := repo.Upsert(ctx, repository.NoTX, &model.ScanRecord{
			UserID: "user-1", BusinessID: "biz-1", TotalScans: 2, LastScanAt: first.Add(25 * time.Hour),
		}); err != nil {
			t.Fatalf("update: %v", err)
		}

		rec, err := repo.Find(ctx, repository.NoTX, "user-1", "biz-1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if rec.TotalScans != 2 {
			t.Errorf("totalScans = %d, want 2", rec.TotalScans)
		}
		if !rec.LastScanAt.Equal(first.Add(25 * time.Hour)) {
			t.Errorf("lastScanAt = %v", rec.LastScanAt)
		}
	})

	t.Run("records are keyed per business", func(t *testing.T) {
		setup(t)
		seedBusiness(t, "biz-2")
		now := time.Now().UTC().Truncate(time.Second)

		if err := repo.Upsert(ctx, repository.NoTX, &model.ScanRecord{
			UserID: "user-1", BusinessID: "biz-1", TotalScans: 5, LastScanAt: now,
		}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Upsert(ctx, repository.NoTX, &model.ScanRecord{
			UserID: "user-1", BusinessID: "biz-2", TotalScans: 1, LastScanAt: now,
		}); err != nil {
			t.Fatal(err)
		}

		rec, err := repo.Find(ctx, repository.NoTX, "user-1", "biz-2")
		if err != nil {
			t.Fatal(err)
		}
		if rec.TotalScans != 1 {
			t.Errorf("totalScans = %d, want 1", rec.TotalScans)
		}
	})
}
