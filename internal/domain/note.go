package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a dated text record whose body is a sequence of Blocks.
type Note struct {
	Base

	Date    time.Time
	Title   string
	Summary string
	Tags    []string
}

func validateNoteAttrs(title string) error {
	if strings.TrimSpace(title) == "" {
		return newValidationError("title must not be empty")
	}
	return nil
}

// NewNote constructs a Note. Entry point for Note.Create.
func NewNote(userID uuid.UUID, date time.Time, title string, summary string, tags []string, now time.Time) (*Note, error) {
	if err := validateNoteAttrs(title); err != nil {
		return nil, err
	}
	return &Note{
		Base:    newBase(userID, now),
		Date:    date,
		Title:   title,
		Summary: summary,
		Tags:    tags,
	}, nil
}

// Update overwrites the editable attributes of a Note.
func (n *Note) Update(title string, summary string, tags []string, date time.Time, now time.Time) error {
	if err := n.checkMutable(); err != nil {
		return err
	}
	if err := validateNoteAttrs(title); err != nil {
		return err
	}
	n.Title = title
	n.Summary = summary
	n.Tags = tags
	n.Date = date
	n.touch(now)
	return nil
}

// SoftDelete marks the Note deleted. Terminal per invariant 3.
func (n *Note) SoftDelete(now time.Time) error {
	return n.softDelete(now)
}
