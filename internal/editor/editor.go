// Package editor is the state machine behind the part detail modal: a
// read-only view, an edit mode working on a local draft, and a save pipeline
// that only commits the backend's authoritative response.
package editor

import "customsdesk/internal/model"

type State int

const (
	// Closed means no part is loaded and the modal is not shown.
	Closed State = iota
	// Viewing shows the authoritative part read-only.
	Viewing
	// Editing works on a local draft; the original is kept for cancel.
	Editing
	// Saving is Editing with the save request in flight; inputs and the
	// save action are disabled until the backend answers.
	Saving
)

// Draft holds the editable subset of a part plus its specs map.
type Draft struct {
	Material         string
	Dimensions       string
	Weight           float64
	WeightUnit       string
	Description      string
	Manufacturer     string
	Condition        string
	TnvedCode        string
	TnvedDescription string
	Specs            model.SpecMap
}

// Editor owns one open part record. The zero value is Closed.
type Editor struct {
	state State
	part  model.Part
	draft Draft
	// errMsg is the last save failure, shown while the draft is retained.
	errMsg string
}

func (e *Editor) State() State    { return e.state }
func (e *Editor) Part() model.Part { return e.part }
func (e *Editor) Draft() *Draft   { return &e.draft }
func (e *Editor) ErrMsg() string  { return e.errMsg }

// Open loads a part and enters Viewing.
func (e *Editor) Open(p model.Part) {
	e.part = p
	e.state = Viewing
	e.errMsg = ""
}

// Close discards everything; the in-memory copy lives only while the modal
// is open.
func (e *Editor) Close() {
	*e = Editor{}
}

// StartEdit snapshots the part into a draft. Only valid from Viewing.
func (e *Editor) StartEdit() {
	if e.state != Viewing {
		return
	}
	e.draft = draftOf(e.part)
	e.errMsg = ""
	e.state = Editing
}

// Cancel throws the draft away and restores the original data.
func (e *Editor) Cancel() {
	if e.state != Editing {
		return
	}
	e.draft = Draft{}
	e.errMsg = ""
	e.state = Viewing
}

// BeginSave freezes the draft, enters Saving and returns the partial update
// to send. Returns false when no save may start (wrong state or one already
// in flight).
func (e *Editor) BeginSave() (model.PartPatch, bool) {
	if e.state != Editing {
		return model.PartPatch{}, false
	}
	e.state = Saving
	e.errMsg = ""
	return e.patch(), true
}

// SaveSucceeded commits the backend's authoritative response and returns to
// Viewing; the draft is discarded.
func (e *Editor) SaveSucceeded(saved model.Part) {
	if e.state != Saving {
		return
	}
	e.part = saved
	e.draft = Draft{}
	e.state = Viewing
}

// SaveFailed returns to Editing with the draft retained so the user can retry
// or cancel.
func (e *Editor) SaveFailed(msg string) {
	if e.state != Saving {
		return
	}
	e.errMsg = msg
	e.state = Editing
}

// AddSpec appends a new entry under an auto-generated placeholder key and
// returns the key. Editing only.
func (e *Editor) AddSpec() (string, bool) {
	if e.state != Editing {
		return "", false
	}
	key := e.draft.Specs.NextPlaceholderKey()
	e.draft.Specs = e.draft.Specs.Set(key, "")
	return key, true
}

// RenameSpec moves a key; collision semantics are last-write-wins.
func (e *Editor) RenameSpec(oldKey, newKey string) {
	if e.state != Editing {
		return
	}
	e.draft.Specs = e.draft.Specs.Rename(oldKey, newKey)
}

// SetSpecValue changes the value stored under key.
func (e *Editor) SetSpecValue(key, value string) {
	if e.state != Editing {
		return
	}
	if _, ok := e.draft.Specs.Get(key); !ok {
		return
	}
	e.draft.Specs = e.draft.Specs.Set(key, value)
}

// RemoveSpec drops the entry for key.
func (e *Editor) RemoveSpec(key string) {
	if e.state != Editing {
		return
	}
	e.draft.Specs = e.draft.Specs.Remove(key)
}

func draftOf(p model.Part) Draft {
	d := Draft{
		Material:     p.Material,
		Dimensions:   p.Dimensions,
		Weight:       p.Weight,
		WeightUnit:   p.WeightUnit,
		Description:  p.Description,
		Manufacturer: p.Manufacturer,
		Condition:    p.Condition,
		Specs:        p.Specs.Clone(),
	}
	if p.TnvedCode != nil {
		d.TnvedCode = *p.TnvedCode
	}
	if p.TnvedDescription != nil {
		d.TnvedDescription = *p.TnvedDescription
	}
	return d
}

func (e *Editor) patch() model.PartPatch {
	d := e.draft
	specs := d.Specs.Clone()
	return model.PartPatch{
		Material:         &d.Material,
		Dimensions:       &d.Dimensions,
		Weight:           &d.Weight,
		WeightUnit:       &d.WeightUnit,
		Description:      &d.Description,
		Manufacturer:     &d.Manufacturer,
		Condition:        &d.Condition,
		TnvedCode:        &d.TnvedCode,
		TnvedDescription: &d.TnvedDescription,
		Specs:            &specs,
	}
}
