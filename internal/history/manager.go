package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkallio/fitplan/internal/errors"
	"github.com/mkallio/fitplan/internal/plan"
)

var (
	// ErrNotFound is returned when a challenge id is not in the history.
	ErrNotFound = errors.NewSentinel("completed challenge not found")
	// ErrPlanNotCompleted rejects archival of a plan with unfinished days on
	// the user-confirmed completion path.
	ErrPlanNotCompleted = errors.NewSentinel("plan is not fully completed")
)

// Store durably persists completed challenges.
type Store interface {
	InsertCompletedChallenge(ctx context.Context, c CompletedChallenge) error
	LoadCompletedChallenges(ctx context.Context) ([]CompletedChallenge, error)
	DeleteCompletedChallenge(ctx context.Context, id uuid.UUID) error
}

// Stats aggregates the whole history.
type Stats struct {
	TotalChallenges    int     `json:"total_challenges"`
	FullyCompleted     int     `json:"fully_completed"`
	AverageSuccessRate float64 `json:"average_success_rate"`
	BestStreak         int     `json:"best_streak"`
	PerfectDays        int     `json:"perfect_days"`
}

// Manager owns the ordered history of completed challenges. Records are kept
// newest first. It implements the archiver side of the plan lifecycle.
type Manager struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
	now    func() time.Time

	challenges []CompletedChallenge
}

var _ plan.Archiver = (*Manager)(nil)

// NewManager creates a history manager.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{ //nolint:exhaustruct // history starts empty until Load.
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Load restores the history from the store, newest first.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	challenges, err := m.store.LoadCompletedChallenges(ctx)
	if err != nil {
		return errors.Wrap(err, "load completed challenges")
	}
	m.challenges = challenges
	return nil
}

// Archive records a fully completed plan. Plans with unfinished days are
// rejected with ErrPlanNotCompleted.
func (m *Manager) Archive(ctx context.Context, p plan.WorkoutPlan) error {
	if !p.IsCompleted() {
		return errors.Wrap(ErrPlanNotCompleted, "archive plan",
			slog.String("plan_id", p.ID.String()),
			slog.Int("completed_days", p.CompletedDays()))
	}
	return m.archive(ctx, p)
}

// ForceArchive records a plan whose window has elapsed regardless of how many
// days were completed.
func (m *Manager) ForceArchive(ctx context.Context, p plan.WorkoutPlan) error {
	return m.archive(ctx, p)
}

func (m *Manager) archive(ctx context.Context, p plan.WorkoutPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := NewCompletedChallenge(p, m.now())

	// Newest first. On persistence failure the in-memory insert is rolled back
	// so memory and store never diverge.
	m.challenges = append([]CompletedChallenge{record}, m.challenges...)
	if err := m.store.InsertCompletedChallenge(ctx, record); err != nil {
		m.challenges = m.challenges[1:]
		return errors.Wrap(err, "persist completed challenge",
			slog.String("challenge_id", record.ID.String()))
	}

	m.logger.LogAttrs(ctx, slog.LevelInfo, "archived challenge",
		slog.String("challenge_id", record.ID.String()),
		slog.String("title", record.Title),
		slog.Int("completed_days", record.CompletedDays()))
	return nil
}

// Delete removes a challenge from the history. The in-memory removal is undone
// when the store delete fails.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := -1
	for i, c := range m.challenges {
		if c.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return errors.Wrap(ErrNotFound, "delete challenge", slog.String("challenge_id", id.String()))
	}

	removed := m.challenges[index]
	m.challenges = append(m.challenges[:index:index], m.challenges[index+1:]...)
	if err := m.store.DeleteCompletedChallenge(ctx, id); err != nil {
		restored := make([]CompletedChallenge, 0, len(m.challenges)+1)
		restored = append(restored, m.challenges[:index]...)
		restored = append(restored, removed)
		restored = append(restored, m.challenges[index:]...)
		m.challenges = restored
		return errors.Wrap(err, "delete challenge from store",
			slog.String("challenge_id", id.String()))
	}
	return nil
}

// Challenges returns the history, newest first.
func (m *Manager) Challenges() []CompletedChallenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	challenges := make([]CompletedChallenge, len(m.challenges))
	copy(challenges, m.challenges)
	return challenges
}

// Recent returns at most limit of the newest challenges.
func (m *Manager) Recent(limit int) []CompletedChallenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.challenges) {
		limit = len(m.challenges)
	}
	if limit < 0 {
		limit = 0
	}
	challenges := make([]CompletedChallenge, limit)
	copy(challenges, m.challenges[:limit])
	return challenges
}

// Stats recomputes the aggregate statistics from the full history. Nothing is
// cached, so a delete immediately changes the result.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{ //nolint:exhaustruct // aggregates filled below.
		TotalChallenges: len(m.challenges),
	}
	if len(m.challenges) == 0 {
		return stats
	}

	rateSum := 0.0
	for _, c := range m.challenges {
		rateSum += c.SuccessRate()
		stats.PerfectDays += c.PerfectDays()
		if c.IsFullyCompleted() {
			stats.FullyCompleted++
		}
		if streak := c.LongestStreak(); streak > stats.BestStreak {
			stats.BestStreak = streak
		}
	}
	stats.AverageSuccessRate = rateSum / float64(len(m.challenges))
	return stats
}

// Badges evaluates the badge catalog against the current history size.
func (m *Manager) Badges() []EarnedBadge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Badges(len(m.challenges))
}
