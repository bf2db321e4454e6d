package dedup_test

import (
	"testing"
	"time"

	"casesync/internal/dedup"
	"casesync/internal/model"
	"casesync/internal/store"
)

var baseTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func suggestion(path, revision, hash, name string, size int64, revisedAt time.Time) *model.Suggestion {
	return &model.Suggestion{
		ID:          model.SuggestionID(path, revision),
		RemotePath:  path,
		DisplayName: name,
		SizeBytes:   size,
		ContentHash: hash,
		RevisedAt:   revisedAt,
		Status:      model.StatusPending,
	}
}

func TestDeduplicator_Check(t *testing.T) {
	t.Run("fresh candidate is not a duplicate", func(t *testing.T) {
		st := store.NewMemoryStore()
		d := dedup.New(st, 0)

		got, err := d.Check(suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got.Duplicate {
			t.Errorf("Check() = %+v, want not duplicate", got)
		}
	})

	t.Run("same hash and path is exact duplicate", func(t *testing.T) {
		st := store.NewMemoryStore()
		existing := suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)
		if err := st.Upsert([]*model.Suggestion{existing}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		d := dedup.New(st, 0)

		// Same path and bytes seen under a new revision marker.
		got, err := d.Check(suggestion("/CASES/A/scan.pdf", "r2", "h1", "scan.pdf", 100, baseTime.Add(time.Hour)))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !got.Duplicate || got.Reason != "exact" {
			t.Errorf("Check() = %+v, want exact duplicate", got)
		}
		if got.Of != existing.ID {
			t.Errorf("Check() Of = %s, want %s", got.Of, existing.ID)
		}
	})

	t.Run("same bytes at a different path stay distinct", func(t *testing.T) {
		st := store.NewMemoryStore()
		existing := suggestion("/CASES/A/scan.pdf", "r1", "h1", "a-scan.pdf", 100, baseTime)
		if err := st.Upsert([]*model.Suggestion{existing}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		d := dedup.New(st, 0)

		got, err := d.Check(suggestion("/CASES/B/scan.pdf", "r1", "h1", "b-scan.pdf", 100, baseTime.Add(time.Hour)))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got.Duplicate {
			t.Errorf("Check() = %+v, want not duplicate for distinct path", got)
		}
	})

	t.Run("same name and size within window is near duplicate", func(t *testing.T) {
		st := store.NewMemoryStore()
		existing := suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)
		if err := st.Upsert([]*model.Suggestion{existing}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		d := dedup.New(st, 5*time.Minute)

		// Metadata touch: different hash source path, same name and size,
		// revised two minutes later.
		got, err := d.Check(suggestion("/CASES/A/sub/scan.pdf", "r1", "h2", "scan.pdf", 100, baseTime.Add(2*time.Minute)))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !got.Duplicate || got.Reason != "near" {
			t.Errorf("Check() = %+v, want near duplicate", got)
		}
	})

	t.Run("same name and size outside window is not a duplicate", func(t *testing.T) {
		st := store.NewMemoryStore()
		existing := suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)
		if err := st.Upsert([]*model.Suggestion{existing}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		d := dedup.New(st, 5*time.Minute)

		got, err := d.Check(suggestion("/CASES/A/sub/scan.pdf", "r1", "h2", "scan.pdf", 100, baseTime.Add(10*time.Minute)))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got.Duplicate {
			t.Errorf("Check() = %+v, want not duplicate outside window", got)
		}
	})

	t.Run("candidate never matches its own stored record", func(t *testing.T) {
		st := store.NewMemoryStore()
		stored := suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)
		stored.Status = model.StatusError
		if err := st.Upsert([]*model.Suggestion{stored}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		d := dedup.New(st, 5*time.Minute)

		// Re-processing the same (path, revision) after an error must not be
		// blocked by the record it is about to replace.
		got, err := d.Check(suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime))
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got.Duplicate {
			t.Errorf("Check() = %+v, want not duplicate against own record", got)
		}
	})
}

func TestCollapseToLatest(t *testing.T) {
	t.Run("keeps latest revision per hash and path", func(t *testing.T) {
		older := suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)
		newer := suggestion("/CASES/A/scan.pdf", "r2", "h1", "scan.pdf", 100, baseTime.Add(time.Minute))

		got := dedup.CollapseToLatest([]*model.Suggestion{older, newer})
		if len(got) != 1 {
			t.Fatalf("CollapseToLatest() = %d entries, want 1", len(got))
		}
		if got[0].ID != newer.ID {
			t.Errorf("CollapseToLatest() kept %s, want %s", got[0].ID, newer.ID)
		}
	})

	t.Run("distinct paths survive", func(t *testing.T) {
		a := suggestion("/CASES/A/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)
		b := suggestion("/CASES/B/scan.pdf", "r1", "h1", "scan.pdf", 100, baseTime)

		got := dedup.CollapseToLatest([]*model.Suggestion{a, b})
		if len(got) != 2 {
			t.Fatalf("CollapseToLatest() = %d entries, want 2", len(got))
		}
	})

	t.Run("first-appearance order preserved", func(t *testing.T) {
		a := suggestion("/CASES/A/one.pdf", "r1", "h1", "one.pdf", 10, baseTime)
		b := suggestion("/CASES/B/two.pdf", "r1", "h2", "two.pdf", 20, baseTime)
		aNewer := suggestion("/CASES/A/one.pdf", "r2", "h1", "one.pdf", 10, baseTime.Add(time.Minute))

		got := dedup.CollapseToLatest([]*model.Suggestion{a, b, aNewer})
		if len(got) != 2 {
			t.Fatalf("CollapseToLatest() = %d entries, want 2", len(got))
		}
		if got[0].ID != aNewer.ID || got[1].ID != b.ID {
			t.Errorf("CollapseToLatest() order = [%s %s], want latest-of-first then second", got[0].RemotePath, got[1].RemotePath)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		if got := dedup.CollapseToLatest(nil); len(got) != 0 {
			t.Errorf("CollapseToLatest(nil) = %v, want empty", got)
		}
	})
}
