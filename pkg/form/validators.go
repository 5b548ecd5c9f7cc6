package form

import (
	"fmt"
	"reflect"
	"regexp"
)

// Error keys reported by the built-in validators.
const (
	KeyRequired = "required"
	KeyPattern  = "pattern"
	KeyNotSame  = "notSame"
)

// Validator is an interface for form field validation.
type Validator interface {
	// Validate checks if the value is valid.
	// Returns nil if valid, or a ValidationError if invalid.
	Validate(value any) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value any) error

func (f ValidatorFunc) Validate(value any) error {
	return f(value)
}

// GroupValidator validates a whole group, typically across fields.
type GroupValidator interface {
	ValidateGroup(g *Group) error
}

// GroupValidatorFunc is a function that implements GroupValidator.
type GroupValidatorFunc func(g *Group) error

func (f GroupValidatorFunc) ValidateGroup(g *Group) error {
	return f(g)
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Key     string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Required validates that the value is present: not nil, not an empty
// string, slice or map. Whitespace counts as a value.
func Required(msg string) Validator {
	if msg == "" {
		msg = "This field is required"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return ValidationError{Key: KeyRequired, Message: msg}
		}
		return nil
	})
}

// PatternRegexp validates that a string matches re.
// Empty values pass; combine with Required to reject them.
func PatternRegexp(re *regexp.Regexp, msg string) Validator {
	if msg == "" {
		msg = "Invalid format"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return nil
		}
		if !re.MatchString(toString(value)) {
			return ValidationError{Key: KeyPattern, Message: msg}
		}
		return nil
	})
}

// Custom creates a validator from a custom function.
// Plain errors are reported under the "custom" key.
func Custom(fn func(value any) error) Validator {
	return ValidatorFunc(fn)
}

// FieldsMatch reports KeyNotSame on the group when the two controls hold
// different values.
func FieldsMatch[T comparable](a, b *Control[T], msg string) GroupValidator {
	if msg == "" {
		msg = fmt.Sprintf("%s and %s do not match", a.Name(), b.Name())
	}
	return GroupValidatorFunc(func(*Group) error {
		if a.Value() != b.Value() {
			return ValidationError{Key: KeyNotSame, Message: msg}
		}
		return nil
	})
}

// isEmpty checks if a value is considered empty.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// toString converts a value to a string.
func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// errorKey returns the key an error is reported under.
func errorKey(err error) string {
	if ve, ok := err.(ValidationError); ok && ve.Key != "" {
		return ve.Key
	}
	return "custom"
}
