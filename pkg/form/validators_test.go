package form

import (
	"errors"
	"regexp"
	"testing"
)

func TestRequiredValidator(t *testing.T) {
	v := Required("")

	for _, empty := range []any{nil, "", []byte{}, []string{}} {
		if err := v.Validate(empty); err == nil {
			t.Errorf("Expected error for %#v", empty)
		}
	}

	for _, present := range []any{"hello", " ", 0, false} {
		if err := v.Validate(present); err != nil {
			t.Errorf("Expected no error for %#v, got: %v", present, err)
		}
	}

	err := v.Validate("")
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Key != KeyRequired {
		t.Errorf("Required error = %#v, want key %q", err, KeyRequired)
	}
}

func TestPatternValidator(t *testing.T) {
	v := PatternRegexp(regexp.MustCompile(`^[a-z]+$`), "lowercase only")

	if err := v.Validate("abc"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if err := v.Validate(""); err != nil {
		t.Errorf("Empty values should pass Pattern, got: %v", err)
	}
	err := v.Validate("ABC")
	if err == nil {
		t.Fatal("Expected error for 'ABC'")
	}
	if err.Error() != "lowercase only" {
		t.Errorf("message = %q, want %q", err.Error(), "lowercase only")
	}
	if errorKey(err) != KeyPattern {
		t.Errorf("key = %q, want %q", errorKey(err), KeyPattern)
	}
}

func TestCustomValidatorKey(t *testing.T) {
	v := Custom(func(any) error { return errors.New("nope") })
	if got := errorKey(v.Validate("x")); got != "custom" {
		t.Errorf("plain errors should use the custom key, got %q", got)
	}
}

func TestErrorsHelpers(t *testing.T) {
	e := Errors{"pattern": "bad format", "required": "missing"}
	if !e.Has("pattern") || e.Has("notSame") {
		t.Error("Has() mismatch")
	}
	keys := e.Keys()
	if len(keys) != 2 || keys[0] != "pattern" || keys[1] != "required" {
		t.Errorf("Keys() = %v", keys)
	}
	msgs := e.Messages()
	if len(msgs) != 2 || msgs[0] != "bad format" {
		t.Errorf("Messages() = %v", msgs)
	}
}
