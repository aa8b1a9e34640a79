// Package progression derives levels from experience points.
package progression

import (
	"math"

	"collabnexus/internal/models"
)

// XPPerLevel is the fixed XP needed to climb one level. Levels are uncapped.
const XPPerLevel = 100

// LevelForXP returns the level a user with xp experience points holds.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// Award adds amount XP to u and recomputes its level. It reports whether
// the level changed. An amount that would overflow the total is rejected
// and leaves u untouched.
func Award(u *models.User, amount int) (bool, error) {
	if amount <= 0 {
		return false, models.NewValidationError("XP amount must be a positive integer")
	}
	if u.XP > math.MaxInt-amount {
		return false, models.NewValidationError("XP amount would overflow the user's total")
	}
	before := u.Level
	u.XP += amount
	u.Level = LevelForXP(u.XP)
	return u.Level != before, nil
}

// Progress reports how far u has come within its current level.
func Progress(u *models.User) models.LevelProgress {
	into := u.XP % XPPerLevel
	if u.XP < 0 {
		into = 0
	}
	return models.LevelProgress{
		UserID:        u.ID,
		XP:            u.XP,
		Level:         LevelForXP(u.XP),
		XPIntoLevel:   into,
		XPPerLevel:    XPPerLevel,
		XPToNextLevel: XPPerLevel - into,
		Percent:       into * 100 / XPPerLevel,
	}
}
