package cache

import (
	"context"
	"time"
)

const (
	UserKeyPrefix    = "user:"
	ProjectKeyPrefix = "project:"
)

const (
	UserTTL    = 5 * time.Minute
	ProjectTTL = 10 * time.Minute
)

func UserKey(userID string) string {
	return UserKeyPrefix + userID
}

func ProjectKey(projectID string) string {
	return ProjectKeyPrefix + projectID
}

func (c *Cache) InvalidateUser(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	c.Invalidate(ctx, keys...)
}

func (c *Cache) InvalidateProject(ctx context.Context, projectID string) {
	c.Invalidate(ctx, ProjectKey(projectID))
}
