package models

import "time"

// User is a collaborator with a gamified XP/level profile.
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	ExternalAuthID string    `gorm:"column:firebase_uid;uniqueIndex;not null" json:"externalAuthId"`
	Skills         []string  `gorm:"serializer:json" json:"skills"`
	Interests      []string  `gorm:"serializer:json" json:"interests"`
	XP             int       `gorm:"not null" json:"xp"`
	Level          int       `gorm:"not null" json:"level"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Skills = cloneStrings(u.Skills)
	c.Interests = cloneStrings(u.Interests)
	return &c
}

// UserProfilePatch lists the user fields a client may change.
type UserProfilePatch struct {
	Skills    *[]string `json:"skills"`
	Interests *[]string `json:"interests"`
}

// Apply merges the patch into u.
func (p UserProfilePatch) Apply(u *User) {
	if p.Skills != nil {
		u.Skills = NormalizeTerms(*p.Skills)
	}
	if p.Interests != nil {
		u.Interests = NormalizeTerms(*p.Interests)
	}
}

// LevelProgress describes where a user stands inside the current level.
type LevelProgress struct {
	UserID        string `json:"userId"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	XPIntoLevel   int    `json:"xpIntoLevel"`
	XPPerLevel    int    `json:"xpPerLevel"`
	XPToNextLevel int    `json:"xpToNextLevel"`
	Percent       int    `json:"percent"`
}
