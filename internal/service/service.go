// Package service implements the collaboration domain on top of the entity
// store: accounts and XP, projects, the task board, milestones, peer
// reviews and teammate matching.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"collabnexus/internal/middleware"
	"collabnexus/internal/models"
	"collabnexus/internal/observability"
	"collabnexus/internal/progression"
	"collabnexus/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// xpAward describes one committed XP grant, reported after the transaction
// that made it commits.
type xpAward struct {
	UserID    string
	Amount    int
	Level     int
	LeveledUp bool
}

// awardXP adds amount XP to userID within tx.
func awardXP(ctx context.Context, tx repository.Tx, userID string, amount int) (*models.User, *xpAward, error) {
	ctx, span := observability.StartServiceSpan(ctx, "progression", "AwardXP",
		attribute.String("user.id", userID),
		attribute.Int("xp.amount", amount),
	)
	var err error
	defer func() { observability.EndSpan(span, err) }()

	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	leveledUp, err := progression.Award(user, amount)
	if err != nil {
		return nil, nil, err
	}
	if err = tx.UpdateUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("save xp for user %s: %w", userID, err)
	}
	return user, &xpAward{UserID: userID, Amount: amount, Level: user.Level, LeveledUp: leveledUp}, nil
}

// report publishes metrics and logs for a committed award. Safe on nil.
func (a *xpAward) report(ctx context.Context, source string) {
	if a == nil {
		return
	}
	observability.XPAwarded.Add(float64(a.Amount))
	middleware.Logger.InfoContext(ctx, "xp awarded",
		slog.String("user_id", a.UserID),
		slog.Int("amount", a.Amount),
		slog.String("source", source),
	)
	if a.LeveledUp {
		observability.LevelUps.Inc()
		middleware.Logger.InfoContext(ctx, "user leveled up",
			slog.String("user_id", a.UserID),
			slog.Int("level", a.Level),
		)
	}
}

func reportCompletion(ctx context.Context, task *models.Task, award *xpAward) {
	observability.TaskCompletions.WithLabelValues(strconv.FormatBool(award != nil)).Inc()
	middleware.Logger.InfoContext(ctx, "task completed",
		slog.String("task_id", task.ID),
		slog.String("project_id", task.ProjectID),
	)
	award.report(ctx, "task")
}

// requireUsers checks that every id names an existing user.
func requireUsers(ctx context.Context, tx repository.Tx, ids ...string) error {
	for _, id := range ids {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
