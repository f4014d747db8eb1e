// Package form holds the client-side state of the listing sheet editor.
//
// A State is a value: Dispatch never changes the receiver and returns a new
// State that shares no slices with it.
package form

import (
	"time"

	"github.com/premiumcars/listingsheet/internal/model"
)

// Mode tells whether the form creates a new record or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Phase is the position of the form in its save cycle.
type Phase string

const (
	PhaseViewing Phase = "viewing"
	PhaseEditing Phase = "editing"
	PhaseSaving  Phase = "saving"
	PhaseError   Phase = "error"
)

// User-facing messages.
const (
	MsgSaveFailed    = "Kon PDF niet opslaan"
	MsgUploadFailed  = "Kon afbeeldingen niet uploaden"
	MsgTitleRequired = "Titel is verplicht"
)

// Fields are the editable text fields of a sheet.
type Fields struct {
	Title        string
	Description  string
	Price        string
	Color        string
	FuelType     string
	Transmission string
}

type snapshot struct {
	fields    Fields
	images    []string
	createdAt *time.Time
}

func (s snapshot) clone() snapshot {
	s.images = cloneImages(s.images)
	if s.createdAt != nil {
		t := *s.createdAt
		s.createdAt = &t
	}
	return s
}

// State is the editor state.
type State struct {
	mode     Mode
	recordID string
	cur      snapshot
	saved    snapshot
	phase    Phase
	errMsg   string
}

// New returns an empty form for creating a record.
func New() State {
	return State{
		mode:  ModeCreate,
		cur:   snapshot{images: []string{}},
		saved: snapshot{images: []string{}},
		phase: PhaseViewing,
	}
}

// FromRecord returns a form editing rec.
func FromRecord(rec *model.Record) State {
	snap := snapshotOf(rec)
	return State{
		mode:     ModeEdit,
		recordID: rec.ID,
		cur:      snap,
		saved:    snap.clone(),
		phase:    PhaseViewing,
	}
}

func snapshotOf(rec *model.Record) snapshot {
	desc := ""
	if rec.Description != nil {
		desc = *rec.Description
	}
	snap := snapshot{
		fields: Fields{
			Title:        rec.Title,
			Description:  desc,
			Price:        rec.Content.Price,
			Color:        rec.Content.Color,
			FuelType:     rec.Content.FuelType,
			Transmission: rec.Content.Transmission,
		},
		images:    cloneImages(rec.Content.Images),
		createdAt: rec.Content.CreatedAt,
	}
	return snap.clone()
}

func (s State) Mode() Mode { return s.mode }
func (s State) RecordID() string { return s.recordID }
func (s State) Fields() Fields { return s.cur.fields }
func (s State) Phase() Phase { return s.phase }
func (s State) Error() string { return s.errMsg }
func (s State) ImageCount() int { return len(s.cur.images) }

// Images returns a copy of the image list.
func (s State) Images() []string {
	return cloneImages(s.cur.images)
}

// Dirty reports whether the fields or images differ from the last saved values.
func (s State) Dirty() bool {
	if s.cur.fields != s.saved.fields || len(s.cur.images) != len(s.saved.images) {
		return true
	}
	for i := range s.cur.images {
		if s.cur.images[i] != s.saved.images[i] {
			return true
		}
	}
	return false
}

// Payload builds the create or update request body. createdAt keeps the
// original value when editing and is now for a new record.
func (s State) Payload(now time.Time) model.Draft {
	f := s.cur.fields

	created := now.UTC()
	if s.cur.createdAt != nil {
		created = *s.cur.createdAt
	}

	desc := f.Description

	return model.Draft{
		Title:       f.Title,
		Description: &desc,
		Content: model.Content{
			Title:        f.Title,
			Description:  f.Description,
			Price:        f.Price,
			Color:        f.Color,
			FuelType:     f.FuelType,
			Transmission: f.Transmission,
			Images:       cloneImages(s.cur.images),
			CreatedAt:    &created,
		},
	}
}

// Dispatch applies a and returns the resulting state.
func (s State) Dispatch(a Action) State {
	next := s.clone()
	return a.apply(next)
}

func (s State) clone() State {
	s.cur = s.cur.clone()
	s.saved = s.saved.clone()
	return s
}

func cloneImages(images []string) []string {
	out := make([]string, len(images))
	copy(out, images)
	return out
}
