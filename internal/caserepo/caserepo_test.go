package caserepo_test

import (
	"testing"
	"time"

	"casesync/internal/caserepo"
	"casesync/internal/engine"
	"casesync/internal/model"
	"casesync/internal/testutil"
)

// forEachRepo runs the suite against both repository implementations.
func forEachRepo(t *testing.T, test func(t *testing.T, r engine.CaseRepository)) {
	t.Run("memory", func(t *testing.T) {
		test(t, caserepo.NewMemoryRepository())
	})
	t.Run("sqlite", func(t *testing.T) {
		test(t, caserepo.NewSQLiteRepository(testutil.NewTestStore(t).DB()))
	})
}

func TestRepository_CreateAndFind(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r engine.CaseRepository) {
		c := &model.Case{ID: "c1", Code: "ABC123", DisplayName: "Anna Kowalski"}
		if err := r.Create(c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		byID, err := r.Get("c1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if byID == nil || byID.DisplayName != "Anna Kowalski" {
			t.Errorf("Get() = %+v, want case c1", byID)
		}
		if unknown, _ := r.Get("no-such-case"); unknown != nil {
			t.Errorf("Get(unknown) = %+v, want nil", unknown)
		}

		got, err := r.FindByCode("ABC123")
		if err != nil {
			t.Fatalf("FindByCode() error = %v", err)
		}
		if got == nil || got.ID != "c1" {
			t.Errorf("FindByCode() = %+v, want case c1", got)
		}

		missing, err := r.FindByCode("XYZ999")
		if err != nil {
			t.Fatalf("FindByCode(unknown) error = %v", err)
		}
		if missing != nil {
			t.Errorf("FindByCode(unknown) = %+v, want nil", missing)
		}

		// Empty codes are never matchable.
		none, err := r.FindByCode("")
		if err != nil {
			t.Fatalf("FindByCode(empty) error = %v", err)
		}
		if none != nil {
			t.Errorf("FindByCode(empty) = %+v, want nil", none)
		}
	})
}

func TestRepository_CreateDuplicateID(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r engine.CaseRepository) {
		if err := r.Create(&model.Case{ID: "c1", DisplayName: "Anna Kowalski"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := r.Create(&model.Case{ID: "c1", DisplayName: "Someone Else"}); err == nil {
			t.Error("Create(duplicate ID) error = nil, want error")
		}
	})
}

func TestRepository_All(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r engine.CaseRepository) {
		for _, c := range []*model.Case{
			{ID: "c2", DisplayName: "Zofia Nowak"},
			{ID: "c1", DisplayName: "Anna Kowalski"},
		} {
			if err := r.Create(c); err != nil {
				t.Fatalf("Create(%s) error = %v", c.ID, err)
			}
		}

		all, err := r.All()
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("All() = %d cases, want 2", len(all))
		}
		if all[0].DisplayName != "Anna Kowalski" || all[1].DisplayName != "Zofia Nowak" {
			t.Errorf("All() order = [%s %s], want sorted by display name", all[0].DisplayName, all[1].DisplayName)
		}
	})
}

func TestRepository_Attachments(t *testing.T) {
	linkedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	forEachRepo(t, func(t *testing.T, r engine.CaseRepository) {
		if err := r.Create(&model.Case{ID: "c1", DisplayName: "Anna Kowalski"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		empty, err := r.Attachment("c1", model.SlotBirth)
		if err != nil {
			t.Fatalf("Attachment() error = %v", err)
		}
		if empty != nil {
			t.Errorf("Attachment(empty slot) = %+v, want nil", empty)
		}

		att := &model.Attachment{
			CaseID:      "c1",
			SlotKey:     model.SlotBirth,
			RemotePath:  "/CASES/KOWALSKI_ANNA/birth.pdf",
			ContentHash: "h1",
			SizeBytes:   100,
			MimeType:    "application/pdf",
			LinkedAt:    linkedAt,
		}
		if err := r.Attach(att); err != nil {
			t.Fatalf("Attach() error = %v", err)
		}

		got, err := r.Attachment("c1", model.SlotBirth)
		if err != nil {
			t.Fatalf("Attachment() error = %v", err)
		}
		if got == nil || got.ContentHash != "h1" {
			t.Errorf("Attachment() = %+v, want hash h1", got)
		}

		// Re-attaching replaces the slot's file.
		att.ContentHash = "h2"
		att.RemotePath = "/CASES/KOWALSKI_ANNA/birth_better_scan.pdf"
		if err := r.Attach(att); err != nil {
			t.Fatalf("Attach(replace) error = %v", err)
		}
		got, _ = r.Attachment("c1", model.SlotBirth)
		if got.ContentHash != "h2" {
			t.Errorf("Attachment() hash = %s, want h2 after replace", got.ContentHash)
		}

		// A different slot on the same case is independent.
		if other, _ := r.Attachment("c1", model.SlotPassport); other != nil {
			t.Errorf("Attachment(other slot) = %+v, want nil", other)
		}

		// Attaching to a case that does not exist is refused.
		bad := *att
		bad.CaseID = "no-such-case"
		if err := r.Attach(&bad); err == nil {
			t.Error("Attach(unknown case) error = nil, want error")
		}
	})
}
