package models

import (
	"strings"
	"time"
)

// DefaultMilestoneXPReward is used when a milestone is created without a reward.
const DefaultMilestoneXPReward = 50

// Milestone marks a checkpoint in a project.
type Milestone struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID   string     `gorm:"index;not null;type:varchar(36)" json:"projectId"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description"`
	XPReward    int        `gorm:"not null" json:"xpReward"`
	IsCompleted bool       `gorm:"not null" json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	c := *m
	c.Description = cloneString(m.Description)
	if m.CompletedAt != nil {
		d := *m.CompletedAt
		c.CompletedAt = &d
	}
	return &c
}

// MilestonePatch enumerates the milestone fields a client may change.
type MilestonePatch struct {
	Title       *string          `json:"title"`
	Description Optional[string] `json:"description"`
	XPReward    *int             `json:"xpReward"`
	IsCompleted *bool            `json:"isCompleted"`
}

func (p MilestonePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("Title cannot be empty")
	}
	if p.XPReward != nil && !ValidXPReward(*p.XPReward) {
		return NewValidationError("xpReward must be a positive integer up to 1000000")
	}
	return nil
}

// Apply merges the patch into m. completedAt is not touched here.
func (p MilestonePatch) Apply(m *Milestone) {
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	p.Description.ApplyTo(&m.Description)
	if p.XPReward != nil {
		m.XPReward = *p.XPReward
	}
	if p.IsCompleted != nil {
		m.IsCompleted = *p.IsCompleted
	}
}
