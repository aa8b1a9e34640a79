// Package progress aggregates task completion into project progress views.
package progress

import (
	"math"

	"collabnexus/internal/models"
)

// UsernameFunc resolves a user id to a username. ok is false when the user
// is unknown; such contributions are left out of the result.
type UsernameFunc func(userID string) (username string, ok bool)

// Compute builds the progress snapshot of projectID from its tasks.
// Contributions appear in order of each user's first completed task.
func Compute(projectID string, tasks []models.Task, username UsernameFunc) models.ProjectProgress {
	out := models.ProjectProgress{
		ProjectID:     projectID,
		TotalTasks:    len(tasks),
		Contributions: []models.Contribution{},
	}

	index := make(map[string]int)
	for i := range tasks {
		t := &tasks[i]
		if !t.IsCompleted() {
			continue
		}
		out.CompletedTasks++

		if t.AssignedTo == nil || *t.AssignedTo == "" {
			continue
		}
		userID := *t.AssignedTo
		pos, seen := index[userID]
		if !seen {
			name, ok := username(userID)
			if !ok {
				continue
			}
			out.Contributions = append(out.Contributions, models.Contribution{
				UserID:   userID,
				Username: name,
			})
			pos = len(out.Contributions) - 1
			index[userID] = pos
		}
		out.Contributions[pos].TasksCompleted++
		out.Contributions[pos].XPEarned += t.XPReward
	}

	out.CompletionPercentage = Percent(out.CompletedTasks, out.TotalTasks)
	return out
}

// Percent returns round(100*part/whole), rounding halves up, or 0 when
// whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)*100/float64(whole) + 0.5))
}
