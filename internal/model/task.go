package model

import (
	"errors"
	"fmt"
	"strings"
)

// Task is the single persisted to-do record. ID is zero until a store
// assigns one on create.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (t Task) IsNew() bool {
	return t.ID == 0
}

// DescriptionDisplayText cuts the description to limit runes and appends an ellipsis.
func (t Task) DescriptionDisplayText(limit int) string {
	r := []rune(t.Description)
	if limit >= 0 && len(r) > limit {
		r = r[:limit]
	}
	return string(r) + "..."
}

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply returns a copy of t with the set fields of p written over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

var ErrUnknownFilter = errors.New("unknown filter")

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Match reports whether t belongs to the filter's category.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Completed returns the completed value the filter selects on, nil for FilterAll.
func (f Filter) Completed() *bool {
	var v bool
	switch f {
	case FilterActive:
		v = false
	case FilterCompleted:
		v = true
	default:
		return nil
	}
	return &v
}
