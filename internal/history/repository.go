package history

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/sqlite"
)

// Repository persists completed challenges as JSON documents in the
// completed_challenges table.
type Repository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

var _ Store = (*Repository)(nil)

// NewRepository creates a history repository backed by the given database.
func NewRepository(db *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// InsertCompletedChallenge stores a challenge record.
func (r *Repository) InsertCompletedChallenge(ctx context.Context, c CompletedChallenge) error {
	document, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal challenge", slog.String("challenge_id", c.ID.String()))
	}
	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO completed_challenges (id, completed_at, document)
		VALUES (?, ?, ?)`,
		c.ID.String(), c.CompletedAt.UTC().Format("2006-01-02T15:04:05.000Z"), string(document))
	if err != nil {
		return errors.Wrap(err, "insert challenge", slog.String("challenge_id", c.ID.String()))
	}
	return nil
}

// LoadCompletedChallenges returns every stored challenge, newest first.
func (r *Repository) LoadCompletedChallenges(ctx context.Context) ([]CompletedChallenge, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT document FROM completed_challenges ORDER BY completed_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query challenges")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "close challenge rows", errors.SlogError(err))
		}
	}()

	var challenges []CompletedChallenge
	for rows.Next() {
		var document string
		if err = rows.Scan(&document); err != nil {
			return nil, errors.Wrap(err, "scan challenge row")
		}
		var c CompletedChallenge
		if err = json.Unmarshal([]byte(document), &c); err != nil {
			// A single undecodable record must not take the whole history down.
			r.logger.LogAttrs(ctx, slog.LevelError, "skipping corrupt challenge record",
				slog.String("cause", err.Error()))
			continue
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate challenge rows")
	}
	return challenges, nil
}

// DeleteCompletedChallenge removes a challenge record. Returns ErrNotFound
// when no record with the id exists.
func (r *Repository) DeleteCompletedChallenge(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM completed_challenges WHERE id = ?`, id.String())
	if err != nil {
		return errors.Wrap(err, "delete challenge", slog.String("challenge_id", id.String()))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected", slog.String("challenge_id", id.String()))
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "delete challenge", slog.String("challenge_id", id.String()))
	}
	return nil
}
