package service

import (
	"context"
	"testing"
	"time"

	"collabnexus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneService(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner")
	p := f.project(t, owner)

	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	f.milestones.WithClock(func() time.Time { return fixed })

	m, err := f.milestones.CreateMilestone(ctx, CreateMilestoneInput{ProjectID: p.ID, Title: "Beta"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMilestoneXPReward, m.XPReward)
	assert.False(t, m.IsCompleted)
	assert.Nil(t, m.CompletedAt)

	got, err := f.milestones.UpdateMilestone(ctx, m.ID, models.MilestonePatch{IsCompleted: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, fixed, *got.CompletedAt)
	assert.Equal(t, 0, xpOf(t, f, owner.ID), "milestones pay no xp")

	f.milestones.WithClock(func() time.Time { return fixed.Add(time.Hour) })
	_, err = f.milestones.UpdateMilestone(ctx, m.ID, models.MilestonePatch{IsCompleted: ptr(false)})
	require.NoError(t, err)
	got, err = f.milestones.UpdateMilestone(ctx, m.ID, models.MilestonePatch{IsCompleted: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, fixed, *got.CompletedAt, "completedAt is set once")

	list, err := f.milestones.ListMilestones(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMilestoneService_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner")
	p := f.project(t, owner)

	_, err := f.milestones.CreateMilestone(ctx, CreateMilestoneInput{ProjectID: p.ID})
	assertValidationError(t, err)
	_, err = f.milestones.CreateMilestone(ctx, CreateMilestoneInput{ProjectID: p.ID, Title: "x", XPReward: ptr(-1)})
	assertValidationError(t, err)
	_, err = f.milestones.CreateMilestone(ctx, CreateMilestoneInput{ProjectID: "missing", Title: "x"})
	assertNotFound(t, err)
	_, err = f.milestones.UpdateMilestone(ctx, "missing", models.MilestonePatch{})
	assertNotFound(t, err)
	_, err = f.milestones.UpdateMilestone(ctx, "missing", models.MilestonePatch{Title: ptr("")})
	assertValidationError(t, err)
	_, err = f.milestones.ListMilestones(ctx, "missing")
	assertNotFound(t, err)
}
