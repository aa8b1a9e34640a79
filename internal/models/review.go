package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is immutable peer feedback left on a project.
type Review struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID  string    `gorm:"index;not null;type:varchar(36)" json:"projectId"`
	ReviewerID string    `gorm:"not null;type:varchar(36)" json:"reviewerId"`
	RevieweeID string    `gorm:"index;not null;type:varchar(36)" json:"revieweeId"`
	Rating     int       `gorm:"not null" json:"rating"`
	Feedback   string    `gorm:"not null" json:"feedback"`
	Tags       []string  `gorm:"serializer:json" json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	c := *r
	c.Tags = cloneStrings(r.Tags)
	return &c
}
