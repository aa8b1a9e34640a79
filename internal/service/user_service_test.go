package service

import (
	"context"
	"math"
	"strings"
	"testing"

	"collabnexus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   CreateUserInput
	}{
		{"missing username", CreateUserInput{Username: "  ", Email: "a@example.com", ExternalAuthID: "x"}},
		{"username too long", CreateUserInput{Username: strings.Repeat("x", 31), Email: "a@example.com", ExternalAuthID: "x"}},
		{"email without at", CreateUserInput{Username: "alice", Email: "alice.example.com", ExternalAuthID: "x"}},
		{"missing external auth id", CreateUserInput{Username: "alice", Email: "alice@example.com"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewUserService(newFixture().store)
			_, err := svc.CreateUser(context.Background(), tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_CreateUser_Normalizes(t *testing.T) {
	t.Parallel()
	f := newFixture()

	u, err := f.users.CreateUser(context.Background(), CreateUserInput{
		Username:       "  alice ",
		Email:          " Alice@Example.COM",
		ExternalAuthID: "fb-1",
		Skills:         []string{" React", "react", "", "Go"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, []string{"React", "Go"}, u.Skills)
	assert.Equal(t, []string{}, u.Interests)
	assert.Equal(t, 0, u.XP)
	assert.Equal(t, 1, u.Level)
}

func TestUserService_CreateUser_Conflicts(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.user(t, "alice")

	_, err := f.users.CreateUser(context.Background(), CreateUserInput{
		Username: "ALICE", Email: "other@example.com", ExternalAuthID: "ext-other",
	})
	assert.True(t, models.IsConflict(err))

	_, err = f.users.CreateUser(context.Background(), CreateUserInput{
		Username: "bob", Email: "ALICE@example.com", ExternalAuthID: "ext-bob",
	})
	assert.True(t, models.IsConflict(err))
}

func TestUserService_ResolveUser(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	alice := f.user(t, "alice")

	byID, err := f.users.ResolveUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byID.ID)

	byExt, err := f.users.ResolveUser(ctx, "ext-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byExt.ID)

	_, err = f.users.ResolveUser(ctx, "nobody")
	assertNotFound(t, err)
}

func TestUserService_GetUserByExternalAuthID(t *testing.T) {
	t.Parallel()
	f := newFixture()
	alice := f.user(t, "alice")

	got, err := f.users.GetUserByExternalAuthID(context.Background(), "ext-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = f.users.GetUserByExternalAuthID(context.Background(), " ")
	assertValidationError(t, err)
}

func TestUserService_AwardXP(t *testing.T) {
	t.Parallel()

	t.Run("adds xp and recomputes level", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		ctx := context.Background()
		u := f.user(t, "alice")

		got, err := f.users.AwardXP(ctx, u.ID, 90)
		require.NoError(t, err)
		assert.Equal(t, 90, got.XP)
		assert.Equal(t, 1, got.Level)

		got, err = f.users.AwardXP(ctx, u.ID, 25)
		require.NoError(t, err)
		assert.Equal(t, 115, got.XP)
		assert.Equal(t, 2, got.Level)

		stored, err := f.users.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, got.XP, stored.XP)
		assert.Equal(t, stored.XP/100+1, stored.Level)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		u := f.user(t, "alice")
		for _, amount := range []int{0, -10} {
			_, err := f.users.AwardXP(context.Background(), u.ID, amount)
			assertValidationError(t, err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := newFixture().users.AwardXP(context.Background(), "missing", 10)
		assertNotFound(t, err)
	})

	t.Run("rejects an award that would overflow", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		ctx := context.Background()
		u := f.user(t, "alice")

		got, err := f.users.AwardXP(ctx, u.ID, math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt, got.XP)

		_, err = f.users.AwardXP(ctx, u.ID, 1)
		assertValidationError(t, err)

		stored, err := f.users.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt, stored.XP)
		assert.Equal(t, stored.XP/100+1, stored.Level)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	f := newFixture()
	u := f.user(t, "alice", "Go")

	interests := []string{"games", " Games ", "music"}
	got, err := f.users.UpdateProfile(context.Background(), u.ID, models.UserProfilePatch{Interests: &interests})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Skills, "skills untouched when absent")
	assert.Equal(t, []string{"games", "music"}, got.Interests)

	_, err = f.users.UpdateProfile(context.Background(), "missing", models.UserProfilePatch{})
	assertNotFound(t, err)
}

func TestUserService_GetProgression(t *testing.T) {
	t.Parallel()
	f := newFixture()
	u := f.user(t, "alice")
	_, err := f.users.AwardXP(context.Background(), u.ID, 245)
	require.NoError(t, err)

	p, err := f.users.GetProgression(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 45, p.XPIntoLevel)
	assert.Equal(t, 55, p.XPToNextLevel)
}
