package responses

import (
	"errors"
	"fmt"
	"html"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// Code is a signup response code returned by the authentication backend.
type Code string

// Built-in response codes.
const (
	CodeSignupSuccess      Code = "SIGNUP_SUCCESS"
	CodeEmailSent          Code = "EMAIL_SENT"
	CodeEmailAlreadyExists Code = "EMAIL_ALREADY_EXISTS"
	CodeEmailNotSent       Code = "EMAIL_NOT_SENT"
	CodeEmailInvalid       Code = "EMAIL_INVALID"
	CodeUserExists         Code = "USER_EXISTS"
)

// ErrInvalidTable is returned when a source is not a code-to-message mapping.
var ErrInvalidTable = errors.New("responses: invalid message table")

var defaultMessages = map[Code]string{
	CodeSignupSuccess:      "Your account has been created. Check your inbox to verify your email address.",
	CodeEmailSent:          "A verification email has been sent. Please check your inbox.",
	CodeEmailAlreadyExists: "An account with this email address already exists.",
	CodeEmailNotSent:       "Your account was created, but we could not send the verification email.",
	CodeEmailInvalid:       "The email address could not be verified.",
	CodeUserExists:         "This user is already registered. Try signing in instead.",
}

// Table is a concurrency-safe code-to-message lookup table.
type Table struct {
	mu       sync.RWMutex
	messages map[Code]string
}

// NewTable creates a table from the given messages.
func NewTable(messages map[Code]string) *Table {
	t := &Table{messages: make(map[Code]string, len(messages))}
	t.Merge(messages)
	return t
}

// Default returns a new table holding the built-in messages.
func Default() *Table {
	return NewTable(defaultMessages)
}

// Lookup returns the message for code. ok is false for unknown codes.
func (t *Table) Lookup(code Code) (msg string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msg, ok = t.messages[code]
	return msg, ok
}

// Merge adds or replaces messages. Empty codes are ignored.
func (t *Table) Merge(messages map[Code]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for code, msg := range messages {
		code = Code(strings.TrimSpace(string(code)))
		if code == "" {
			continue
		}
		t.messages[code] = Sanitize(msg)
	}
}

// Codes returns all known codes in sorted order.
func (t *Table) Codes() []Code {
	t.mu.RLock()
	defer t.mu.RUnlock()
	codes := make([]Code, 0, len(t.messages))
	for code := range t.messages {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Len returns the number of messages.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Parse decodes a YAML code-to-message mapping.
func Parse(data []byte) (map[Code]string, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	out := make(map[Code]string, len(raw))
	for code, msg := range raw {
		out[Code(code)] = msg
	}
	return out, nil
}

// LoadFile reads a YAML message table from disk.
func LoadFile(path string) (map[Code]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("responses: read %s: %w", path, err)
	}
	return Parse(data)
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips all markup from a message and trims surrounding space.
// The result is plain text: entities the policy escapes are decoded again,
// so templates escape it exactly once.
func Sanitize(msg string) string {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(msg)))
}
