package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatch_UnmarshalTriState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
	}{
		{name: "absent", body: `{"title":"x"}`},
		{name: "explicit null", body: `{"assignedTo":null}`, wantSet: true},
		{name: "value", body: `{"assignedTo":"u-1"}`, wantSet: true, wantValue: strPtr("u-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var p TaskPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.wantSet, p.AssignedTo.Set)
			assert.Equal(t, tt.wantValue, p.AssignedTo.Value)
		})
	}
}

func TestTaskPatch_UnmarshalRejectsWrongType(t *testing.T) {
	var p TaskPatch
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate":"tomorrow"}`), &p))
}

func TestTaskPatch_Validate(t *testing.T) {
	t.Parallel()

	bad := TaskStatus("done")
	urgent := Priority("urgent")
	zero := 0
	huge := MaxXPReward + 1
	empty := ""
	blank := "   "

	tests := []struct {
		name    string
		patch   TaskPatch
		wantErr bool
	}{
		{name: "empty patch", patch: TaskPatch{}},
		{name: "empty title", patch: TaskPatch{Title: &empty}, wantErr: true},
		{name: "unknown status", patch: TaskPatch{Status: &bad}, wantErr: true},
		{name: "unknown priority", patch: TaskPatch{Priority: &urgent}, wantErr: true},
		{name: "zero reward", patch: TaskPatch{XPReward: &zero}, wantErr: true},
		{name: "whitespace title", patch: TaskPatch{Title: &blank}, wantErr: true},
		{name: "reward above cap", patch: TaskPatch{XPReward: &huge}, wantErr: true},
		{name: "blank assignee", patch: TaskPatch{AssignedTo: Some("")}, wantErr: true},
		{name: "unassign", patch: TaskPatch{AssignedTo: Null[string]()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{
		Title:       "old",
		Description: strPtr("keep me?"),
		Status:      TaskStatusNotStarted,
		AssignedTo:  strPtr("u-1"),
		Priority:    PriorityLow,
		XPReward:    10,
		DueDate:     &due,
	}

	status := TaskStatusCompleted
	reward := 40
	title := "  new  "
	TaskPatch{
		Title:       &title,
		Status:      &status,
		XPReward:    &reward,
		Description: Null[string](),
		AssignedTo:  Some("u-2"),
	}.Apply(task)

	assert.Equal(t, "new", task.Title)
	assert.Nil(t, task.Description)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, "u-2", *task.AssignedTo)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, 40, task.XPReward)
	assert.Equal(t, &due, task.DueDate)
	assert.Nil(t, task.CompletedAt)
}

func TestOptional_ApplyToCopiesValue(t *testing.T) {
	src := Some("a")
	var dst *string
	src.ApplyTo(&dst)
	*src.Value = "b"
	assert.Equal(t, "a", *dst)
}

func TestMilestonePatch(t *testing.T) {
	zero := 0
	huge := MaxXPReward + 1
	blank := " \t "
	assert.True(t, IsValidation(MilestonePatch{XPReward: &zero}.Validate()))
	assert.True(t, IsValidation(MilestonePatch{XPReward: &huge}.Validate()))
	assert.True(t, IsValidation(MilestonePatch{Title: &blank}.Validate()))

	title := "  Beta  "
	renamed := &Milestone{Title: "MVP"}
	MilestonePatch{Title: &title}.Apply(renamed)
	assert.Equal(t, "Beta", renamed.Title)

	done := true
	m := &Milestone{Title: "MVP", Description: strPtr("first cut"), XPReward: 50}
	MilestonePatch{IsCompleted: &done, Description: Null[string]()}.Apply(m)
	assert.True(t, m.IsCompleted)
	assert.Nil(t, m.Description)
	assert.Nil(t, m.CompletedAt)
}

func strPtr(s string) *string { return &s }
