package form

import (
	"strings"

	"github.com/premiumcars/listingsheet/internal/model"
)

// Action is a named change to the form.
type Action interface {
	apply(s State) State
}

type (
	SetTitle        struct{ Value string }
	SetDescription  struct{ Value string }
	SetPrice        struct{ Value string }
	SetColor        struct{ Value string }
	SetFuelType     struct{ Value string }
	SetTransmission struct{ Value string }

	// AddImages appends a whole batch of encoded images.
	AddImages struct{ Images []string }
	// RemoveImage drops the image at Index. Out of range is a no-op.
	RemoveImage struct{ Index int }

	// Save starts a save round trip.
	Save struct{}
	// SaveSucceeded ends a save; Record replaces the form fields.
	SaveSucceeded struct{ Record *model.Record }
	// SaveFailed ends a save with an error. Message defaults to MsgSaveFailed.
	SaveFailed struct{ Message string }
	// Reset discards unsaved changes.
	Reset struct{}
)

// edit runs fn on the fields unless a save is in flight.
func edit(s State, fn func(*Fields)) State {
	if s.phase == PhaseSaving {
		return s
	}
	fn(&s.cur.fields)
	s.phase = PhaseEditing
	s.errMsg = ""
	return s
}

func (a SetTitle) apply(s State) State {
	return edit(s, func(f *Fields) { f.Title = a.Value })
}

func (a SetDescription) apply(s State) State {
	return edit(s, func(f *Fields) { f.Description = a.Value })
}

func (a SetPrice) apply(s State) State {
	return edit(s, func(f *Fields) { f.Price = a.Value })
}

func (a SetColor) apply(s State) State {
	return edit(s, func(f *Fields) { f.Color = a.Value })
}

func (a SetFuelType) apply(s State) State {
	return edit(s, func(f *Fields) { f.FuelType = a.Value })
}

func (a SetTransmission) apply(s State) State {
	return edit(s, func(f *Fields) { f.Transmission = a.Value })
}

func (a AddImages) apply(s State) State {
	if len(a.Images) == 0 {
		return s
	}
	s = edit(s, func(*Fields) {})
	if s.phase != PhaseEditing {
		return s
	}
	s.cur.images = append(s.cur.images, a.Images...)
	return s
}

func (a RemoveImage) apply(s State) State {
	if a.Index < 0 || a.Index >= len(s.cur.images) {
		return s
	}
	s = edit(s, func(*Fields) {})
	if s.phase != PhaseEditing {
		return s
	}
	s.cur.images = append(s.cur.images[:a.Index], s.cur.images[a.Index+1:]...)
	return s
}

func (Save) apply(s State) State {
	if s.phase == PhaseSaving {
		return s
	}
	if strings.TrimSpace(s.cur.fields.Title) == "" {
		s.phase = PhaseError
		s.errMsg = MsgTitleRequired
		return s
	}
	s.phase = PhaseSaving
	s.errMsg = ""
	return s
}

func (a SaveSucceeded) apply(s State) State {
	if s.phase != PhaseSaving {
		return s
	}
	if a.Record != nil {
		s.mode = ModeEdit
		s.recordID = a.Record.ID
		s.cur = snapshotOf(a.Record)
	}
	s.saved = s.cur.clone()
	s.phase = PhaseViewing
	s.errMsg = ""
	return s
}

func (a SaveFailed) apply(s State) State {
	if s.phase != PhaseSaving {
		return s
	}
	s.phase = PhaseError
	s.errMsg = a.Message
	if s.errMsg == "" {
		s.errMsg = MsgSaveFailed
	}
	return s
}

func (Reset) apply(s State) State {
	if s.phase == PhaseSaving {
		return s
	}
	s.cur = s.saved.clone()
	s.phase = PhaseViewing
	s.errMsg = ""
	return s
}
