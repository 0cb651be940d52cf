package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/sqlite"
)

// Repository persists plans as JSON documents in the plan_slots table.
type Repository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

var _ Store = (*Repository)(nil)

// NewRepository creates a plan repository backed by the given database.
func NewRepository(db *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// SaveWorkoutPlan stores the plan document in the given slot, replacing any
// previous document.
func (r *Repository) SaveWorkoutPlan(ctx context.Context, slot Slot, p WorkoutPlan) error {
	document, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal plan", slog.String("slot", string(slot)))
	}
	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO plan_slots (slot, document)
		VALUES (?, ?)
		ON CONFLICT (slot) DO UPDATE SET document   = excluded.document,
		                                 updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		string(slot), string(document))
	if err != nil {
		return errors.Wrap(err, "save plan", slog.String("slot", string(slot)))
	}
	return nil
}

// LoadWorkoutPlan loads the plan stored in the given slot. Returns ErrNotFound
// when the slot is empty and ErrCorrupt when the document does not decode into
// a structurally valid plan.
func (r *Repository) LoadWorkoutPlan(ctx context.Context, slot Slot) (WorkoutPlan, error) {
	var document string
	err := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT document FROM plan_slots WHERE slot = ?`, string(slot)).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return WorkoutPlan{}, ErrNotFound //nolint:exhaustruct // zero value on error.
	}
	if err != nil {
		return WorkoutPlan{}, errors.Wrap(err, "query plan slot", //nolint:exhaustruct
			slog.String("slot", string(slot)))
	}

	var p WorkoutPlan
	if err = json.Unmarshal([]byte(document), &p); err != nil {
		return WorkoutPlan{}, errors.Wrap(ErrCorrupt, "decode plan document", //nolint:exhaustruct
			slog.String("slot", string(slot)), slog.String("cause", err.Error()))
	}
	if !p.IsValid() {
		return WorkoutPlan{}, errors.Wrap(ErrCorrupt, "plan failed validation", //nolint:exhaustruct
			slog.String("slot", string(slot)))
	}
	return p, nil
}

// ClearWorkoutPlan removes any plan stored in the given slot. Clearing an
// empty slot is not an error.
func (r *Repository) ClearWorkoutPlan(ctx context.Context, slot Slot) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM plan_slots WHERE slot = ?`, string(slot)); err != nil {
		return errors.Wrap(err, "clear plan slot", slog.String("slot", string(slot)))
	}
	return nil
}
