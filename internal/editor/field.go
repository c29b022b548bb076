package editor

// FieldState is the state of one editable field.
type FieldState int

const (
	Viewing FieldState = iota
	Editing
)

func (s FieldState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Field is the per-field edit machine: Viewing, or Editing with a draft.
type Field struct {
	state    FieldState
	original string
	draft    string
}

// Begin enters Editing with the current value as the draft. Beginning an
// already editing field keeps its draft.
func (f *Field) Begin(current string) {
	if f.state == Editing {
		return
	}
	f.state = Editing
	f.original = current
	f.draft = current
}

// Edit replaces the draft. It returns false when not editing.
func (f *Field) Edit(text string) bool {
	if f.state != Editing {
		return false
	}
	f.draft = text
	return true
}

// End leaves Editing and returns the draft and whether it differs from the
// value the edit started from.
func (f *Field) End() (draft string, changed bool) {
	if f.state != Editing {
		return "", false
	}
	f.state = Viewing
	return f.draft, f.draft != f.original
}

// Cancel leaves Editing and discards the draft.
func (f *Field) Cancel() {
	f.state = Viewing
	f.draft = ""
	f.original = ""
}

// State returns the current state.
func (f *Field) State() FieldState {
	return f.state
}

// Draft returns the draft while editing.
func (f *Field) Draft() (string, bool) {
	return f.draft, f.state == Editing
}
