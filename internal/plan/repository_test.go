package plan_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/plan"
	"github.com/mkallio/fitplan/internal/sqlite"
	"github.com/mkallio/fitplan/internal/testhelpers"
)

func newTestRepository(t *testing.T) *plan.Repository {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return plan.NewRepository(db, logger)
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)
	ctx := t.Context()

	p := newTestPlan(date(2026, time.May, 4))
	completeDay(&p, 0)

	if err := repo.SaveWorkoutPlan(ctx, plan.SlotActive, p); err != nil {
		t.Fatalf("SaveWorkoutPlan() error = %v", err)
	}
	loaded, err := repo.LoadWorkoutPlan(ctx, plan.SlotActive)
	if err != nil {
		t.Fatalf("LoadWorkoutPlan() error = %v", err)
	}
	if diff := cmp.Diff(p, loaded); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestRepositorySaveReplacesSlot(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)
	ctx := t.Context()

	first := newTestPlan(date(2026, time.May, 4))
	second := newTestPlan(date(2026, time.May, 11))

	if err := repo.SaveWorkoutPlan(ctx, plan.SlotSuggested, first); err != nil {
		t.Fatalf("SaveWorkoutPlan() error = %v", err)
	}
	if err := repo.SaveWorkoutPlan(ctx, plan.SlotSuggested, second); err != nil {
		t.Fatalf("SaveWorkoutPlan() error = %v", err)
	}

	loaded, err := repo.LoadWorkoutPlan(ctx, plan.SlotSuggested)
	if err != nil {
		t.Fatalf("LoadWorkoutPlan() error = %v", err)
	}
	if loaded.ID != second.ID {
		t.Errorf("loaded plan ID = %v, want %v", loaded.ID, second.ID)
	}
}

func TestRepositorySlotsAreIndependent(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)
	ctx := t.Context()

	suggested := newTestPlan(date(2026, time.May, 4))
	if err := repo.SaveWorkoutPlan(ctx, plan.SlotSuggested, suggested); err != nil {
		t.Fatalf("SaveWorkoutPlan() error = %v", err)
	}
	if err := repo.SaveWorkoutPlan(ctx, plan.SlotOriginal, suggested); err != nil {
		t.Fatalf("SaveWorkoutPlan() error = %v", err)
	}

	if _, err := repo.LoadWorkoutPlan(ctx, plan.SlotActive); !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("LoadWorkoutPlan(active) error = %v, want ErrNotFound", err)
	}
	if err := repo.ClearWorkoutPlan(ctx, plan.SlotSuggested); err != nil {
		t.Fatalf("ClearWorkoutPlan() error = %v", err)
	}
	if _, err := repo.LoadWorkoutPlan(ctx, plan.SlotSuggested); !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("LoadWorkoutPlan(cleared slot) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.LoadWorkoutPlan(ctx, plan.SlotOriginal); err != nil {
		t.Errorf("LoadWorkoutPlan(original) error = %v, want nil", err)
	}
}

func TestRepositoryClearEmptySlot(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)
	if err := repo.ClearWorkoutPlan(t.Context(), plan.SlotActive); err != nil {
		t.Errorf("ClearWorkoutPlan(empty slot) error = %v, want nil", err)
	}
}

func TestRepositoryCorruptDocument(t *testing.T) {
	t.Parallel()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	repo := plan.NewRepository(db, logger)
	ctx := t.Context()

	writeDocument := func(t *testing.T, document string) {
		t.Helper()
		_, err := db.ReadWrite.ExecContext(ctx, `
			INSERT INTO plan_slots (slot, document) VALUES ('active', ?)
			ON CONFLICT (slot) DO UPDATE SET document = excluded.document`, document)
		if err != nil {
			t.Fatalf("write document: %v", err)
		}
	}

	writeDocument(t, "{not json")
	if _, err = repo.LoadWorkoutPlan(ctx, plan.SlotActive); !errors.Is(err, plan.ErrCorrupt) {
		t.Errorf("LoadWorkoutPlan(malformed json) error = %v, want ErrCorrupt", err)
	}

	// Decodes but fails structural validation.
	writeDocument(t, `{"id":"00000000-0000-0000-0000-000000000000","days":[]}`)
	if _, err = repo.LoadWorkoutPlan(ctx, plan.SlotActive); !errors.Is(err, plan.ErrCorrupt) {
		t.Errorf("LoadWorkoutPlan(invalid plan) error = %v, want ErrCorrupt", err)
	}
}
