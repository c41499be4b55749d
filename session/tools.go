package session

import (
	"github.com/georgepadayatti/pdfsign/fields"
	"github.com/georgepadayatti/pdfsign/geometry"
	"github.com/georgepadayatti/pdfsign/viewport"
)

// SelectTool makes kind the active tool. Selecting the active tool again
// clears it. It returns the resulting tool state.
func (s *Session) SelectTool(kind fields.Kind) (fields.Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasTool && s.tool == kind {
		s.hasTool = false
	} else {
		s.tool, s.hasTool = kind, true
	}
	return s.tool, s.hasTool
}

// Tool returns the active tool.
func (s *Session) Tool() (fields.Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool, s.hasTool
}

// ClearTool deactivates the active tool.
func (s *Session) ClearTool() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasTool = false
}

// Place creates a pending field of the active tool's kind where pointer
// lands on the visible page. It replaces any earlier pending field.
//
// Without an active tool, display geometry or a pointer inside the page it
// fails with ErrNoTool, ErrNoGeometry or viewport.ErrOutsidePage; callers
// ignore such clicks.
func (s *Session) Place(pointer geometry.Point) (fields.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.place(pointer)
}

func (s *Session) place(pointer geometry.Point) (fields.Field, error) {
	if !s.hasTool {
		return fields.Field{}, ErrNoTool
	}
	p, ok := s.projector()
	if !ok {
		return fields.Field{}, ErrNoGeometry
	}
	doc, err := p.ToDocument(pointer)
	if err != nil {
		return fields.Field{}, err
	}

	f := s.factory.Create(s.tool, s.page, doc.X, doc.Y)
	s.pending = &f
	s.logger.Debug("placed pending field", "field", f.ID, "kind", f.Kind.String(), "page", f.Page, "x", doc.X, "y", doc.Y)
	return f, nil
}

// Pending returns the field awaiting content.
func (s *Session) Pending() (fields.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return fields.Field{}, false
	}
	return *s.pending, true
}

// Commit attaches content to the pending field and adds it to the placed
// fields. The active tool is cleared.
func (s *Session) Commit(content string) (fields.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return fields.Field{}, ErrNoPending
	}
	f := fields.AttachContent(*s.pending, content)
	s.fields = fields.Append(s.fields, f)
	s.pending = nil
	s.hasTool = false
	return f, nil
}

// Cancel discards the pending field and clears the active tool.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.hasTool = false
}

// Select marks the placed field id as selected. An unknown id clears the
// selection.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := fields.Find(s.fields, id); !ok {
		s.selected = ""
		return false
	}
	s.selected = id
	return true
}

// Selected returns the selected field's id, or "".
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Delete removes a placed field. Deleting an absent id does nothing.
func (s *Session) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delete(id)
}

func (s *Session) delete(id string) {
	s.fields = fields.Remove(s.fields, id)
	if s.selected == id {
		s.selected = ""
	}
}

// ClearAll removes every placed field.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = nil
	s.selected = ""
}

// Action is what a click on the page did.
type Action int

const (
	// ActionNone means the click was ignored.
	ActionNone Action = iota
	// ActionPlace means a pending field was created.
	ActionPlace
	// ActionSelect means a placed field was selected.
	ActionSelect
	// ActionDelete means the selected field was deleted.
	ActionDelete
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionPlace:
		return "place"
	case ActionSelect:
		return "select"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Click handles a click on the page surface. While a tool is active every
// click places a pending field, including clicks on top of placed fields.
// Otherwise a click on the selected field's delete handle deletes it and a
// click on a field selects it. The id of the affected field is returned
// alongside the action.
func (s *Session) Click(pointer geometry.Point) (Action, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasTool {
		f, err := s.place(pointer)
		if err != nil {
			return ActionNone, "", err
		}
		return ActionPlace, f.ID, nil
	}

	if p, ok := s.projector(); ok {
		overlays := p.ProjectSelected(fields.ForPage(s.fields, s.page), s.selected)
		if hit, ok := viewport.HitTest(overlays, pointer); ok {
			if hit.Delete {
				s.delete(hit.FieldID)
				return ActionDelete, hit.FieldID, nil
			}
			s.selected = hit.FieldID
			return ActionSelect, hit.FieldID, nil
		}
	}
	return ActionNone, "", ErrNoTool
}
