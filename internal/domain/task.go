package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a time-anchored to-do (spec.md §3).
type Task struct {
	Base

	Date        time.Time
	Title       string
	Description string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    string
	TravelTime  *time.Duration

	ReminderAtUtc             *time.Time
	ReminderAcknowledgedAtUtc *time.Time
	IsCompleted               bool
}

func validateTaskAttrs(title string, start, end *time.Time) error {
	var msgs []string
	if strings.TrimSpace(title) == "" {
		msgs = append(msgs, "title must not be empty")
	}
	if start != nil && end != nil && start.After(*end) {
		msgs = append(msgs, "start must be before or equal to end")
	}
	if len(msgs) > 0 {
		return newValidationError(msgs...)
	}
	return nil
}

// NewTask constructs a Task. It is the domain entry point for Task.Create.
func NewTask(userID uuid.UUID, date time.Time, title string, description string, start, end *time.Time, location string, travelTime *time.Duration, now time.Time) (*Task, error) {
	if err := validateTaskAttrs(title, start, end); err != nil {
		return nil, err
	}
	return &Task{
		Base:        newBase(userID, now),
		Date:        date,
		Title:       title,
		Description: description,
		StartTime:   start,
		EndTime:     end,
		Location:    location,
		TravelTime:  travelTime,
	}, nil
}

// Update overwrites the editable attributes of a Task. An empty Description,
// per Open Question #2 in spec.md §9, is treated as an explicit overwrite
// (clears the field) rather than "no change" — see DESIGN.md.
func (t *Task) Update(title string, date time.Time, description string, start, end *time.Time, location string, travelTime *time.Duration, now time.Time) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if err := validateTaskAttrs(title, start, end); err != nil {
		return err
	}
	t.Title = title
	t.Date = date
	t.Description = description
	t.StartTime = start
	t.EndTime = end
	t.Location = location
	t.TravelTime = travelTime
	t.touch(now)
	return nil
}

// SetReminder sets or clears (at == nil) the reminder timestamp. Per
// spec.md §9 Open Question #3 this follows the newer "clear on nil" variant:
// calling SetReminder(nil, now) clears ReminderAtUtc rather than being a
// no-op.
func (t *Task) SetReminder(at *time.Time, now time.Time) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	t.ReminderAtUtc = at
	t.touch(now)
	return nil
}

// AcknowledgeReminder records that the client acknowledged a fired reminder.
func (t *Task) AcknowledgeReminder(at time.Time, now time.Time) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	t.ReminderAcknowledgedAtUtc = &at
	t.touch(now)
	return nil
}

// MarkCompleted flips IsCompleted true; idempotent at the domain level (the
// sync engine's delete/update framing around it is what enforces conflict
// semantics).
func (t *Task) MarkCompleted(now time.Time) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	t.IsCompleted = true
	t.touch(now)
	return nil
}

// SoftDelete marks the Task deleted. Terminal per invariant 3.
func (t *Task) SoftDelete(now time.Time) error {
	return t.softDelete(now)
}
