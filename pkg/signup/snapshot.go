package signup

import "github.com/vango-dev/signup/pkg/form"

var fieldOrder = []string{FieldName, FieldEmail, FieldPassword, FieldConfirmPassword}

// FieldState is the rendered state of one field.
type FieldState struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Secret fields never carry their value in a snapshot.
	Secret     bool        `json:"secret,omitempty"`
	Errors     form.Errors `json:"errors,omitempty"`
	ErrorState bool        `json:"errorState"`
	Dirty      bool        `json:"dirty"`
	Touched    bool        `json:"touched"`
}

// State is a point-in-time view of the controller, suitable for templates
// and JSON.
type State struct {
	Fields         []FieldState `json:"fields"`
	GroupErrors    form.Errors  `json:"groupErrors,omitempty"`
	Valid          bool         `json:"valid"`
	Loading        bool         `json:"loading"`
	MessageLoading bool         `json:"messageLoading"`
	Submitted      bool         `json:"submitted"`
	Code           string       `json:"mCode,omitempty"`
	Message        string       `json:"message,omitempty"`
}

// Field returns the state of the named field, or a zero FieldState.
func (s State) Field(name string) FieldState {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return FieldState{}
}

// Snapshot captures the current state. Password values are omitted.
func (c *Controller) Snapshot() State {
	s := State{
		Fields:         make([]FieldState, 0, len(fieldOrder)),
		GroupErrors:    c.form.Errors(),
		Valid:          c.form.Valid(),
		Loading:        c.loading.Get(),
		MessageLoading: c.messageLoading.Get(),
		Submitted:      c.submitted.Get(),
		Code:           string(c.code.Get()),
		Message:        c.message.Get(),
	}
	for _, name := range fieldOrder {
		ctrl, _ := c.Field(name)
		fs := FieldState{
			Name:       name,
			Errors:     ctrl.Errors(),
			ErrorState: c.ErrorState(ctrl),
			Dirty:      ctrl.Dirty(),
			Touched:    ctrl.Touched(),
		}
		if name == FieldPassword || name == FieldConfirmPassword {
			fs.Secret = true
		} else {
			fs.Value = ctrl.Value()
		}
		s.Fields = append(s.Fields, fs)
	}
	return s
}
