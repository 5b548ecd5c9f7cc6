package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "S101",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "auth error",
			code:    "S201",
			wantMsg: "Authentication backend unreachable",
			wantCat: CategoryAuth,
		},
		{
			name:    "messages error",
			code:    "S301",
			wantMsg: "Message table could not be loaded",
			wantCat: CategoryMessages,
		},
		{
			name:    "unknown error code",
			code:    "S999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "base-url")
	if err.Message != `flag "base-url" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
	if err.Error() != `flag "base-url" is required` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("S201").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if got := err.Error(); got != "S201: Authentication backend unreachable: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "S201") != nil {
		t.Error("FromError(nil) should be nil")
	}

	original := New("S102")
	if got := FromError(original, "S201"); got != original {
		t.Error("FromError should return an existing SignupError unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "S301")
	if wrapped.Code != "S301" {
		t.Errorf("Code = %q, want S301", wrapped.Code)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("S101").
		WithDetail("No signup.json found in /tmp/app").
		WithSuggestion("Pass --config")

	out := err.Format()
	for _, want := range []string{"ERROR S101: Configuration file not found", "No signup.json found in /tmp/app", "Hint: Pass --config"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
