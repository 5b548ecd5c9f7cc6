package server

import (
	"github.com/flosch/pongo2/v6"

	"github.com/vango-dev/signup/pkg/signup"
)

type fieldMeta struct {
	label        string
	inputType    string
	autocomplete string
}

var fieldMetas = map[string]fieldMeta{
	signup.FieldName:            {"Name", "text", "name"},
	signup.FieldEmail:           {"Email", "email", "email"},
	signup.FieldPassword:        {"Password", "password", "new-password"},
	signup.FieldConfirmPassword: {"Confirm password", "password", "new-password"},
}

// fieldView is the template-facing form of signup.FieldState.
type fieldView struct {
	Name         string
	Label        string
	Type         string
	Autocomplete string
	Value        string
	Messages     []string
	ErrorState   bool
}

func signupContext(s signup.State, signupPath, livePath string) pongo2.Context {
	fields := make([]fieldView, 0, len(s.Fields))
	dirty := false
	for _, f := range s.Fields {
		meta := fieldMetas[f.Name]
		fields = append(fields, fieldView{
			Name:         f.Name,
			Label:        meta.label,
			Type:         meta.inputType,
			Autocomplete: meta.autocomplete,
			Value:        f.Value,
			Messages:     f.Errors.Messages(),
			ErrorState:   f.ErrorState,
		})
		dirty = dirty || f.Dirty
	}

	return pongo2.Context{
		"fields":          fields,
		"groupMessages":   s.GroupErrors.Messages(),
		"showGroupErrors": dirty && len(s.GroupErrors) > 0,
		"loading":         s.Loading,
		"messageLoading":  s.MessageLoading,
		"submitted":       s.Submitted,
		"code":            s.Code,
		"message":         s.Message,
		"signupPath":      signupPath,
		"livePath":        livePath,
	}
}
