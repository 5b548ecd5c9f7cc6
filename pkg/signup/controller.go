package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/vango-dev/signup/pkg/auth"
	"github.com/vango-dev/signup/pkg/form"
	"github.com/vango-dev/signup/pkg/responses"
	"github.com/vango-dev/signup/pkg/signal"
)

// Field names, as used in HTML forms and live events.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// spaceClass is the ECMAScript \s set for use inside a character class.
// RE2's \s covers ASCII only.
const spaceClass = `\s\x0B\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// Validation patterns. A quoted local part excludes line terminators.
const (
	NamePattern  = `^[a-zA-Z ]+$`
	EmailPattern = `^(([^<>+()\[\]\\.,;:` + spaceClass + `@"-#$%&=]+(\.[^<>()\[\]\\.,;:` + spaceClass + `@"]+)*)|("[^\n\r\x{2028}\x{2029}]+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,3}))$`
)

var (
	nameRegexp  = regexp.MustCompile(NamePattern)
	emailRegexp = regexp.MustCompile(EmailPattern)
)

var (
	// ErrInvalidForm is returned by Submit when validation fails.
	ErrInvalidForm = errors.New("signup: form is invalid")

	// ErrUnknownField is returned when an event names a field the form
	// does not have.
	ErrUnknownField = errors.New("signup: unknown field")
)

// Submission outcomes reported to Metrics.
const (
	OutcomeInvalid = "invalid"
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics receives one observation per Submit call.
type Metrics interface {
	ObserveSubmit(outcome string, duration time.Duration)
}

// ErrorPolicy decides what happens to MessageLoading when the backend call
// fails.
type ErrorPolicy int

const (
	// KeepMessageLoading leaves MessageLoading set after a failure.
	KeepMessageLoading ErrorPolicy = iota
	// ClearMessageLoading clears MessageLoading after a failure.
	ClearMessageLoading
)

func (p ErrorPolicy) String() string {
	switch p {
	case KeepMessageLoading:
		return "keep"
	case ClearMessageLoading:
		return "clear"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the submit metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithErrorPolicy sets the failure behavior for MessageLoading.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithMatcher replaces the error-state matcher.
func WithMatcher(m form.ErrorStateMatcher) Option {
	return func(c *Controller) {
		if m != nil {
			c.matcher = m
		}
	}
}

// Controller is the signup form controller. It is safe for concurrent use,
// but Submit does not deduplicate: callers that must not double-submit
// check Loading first.
type Controller struct {
	form            *form.Group
	name            *form.Control[string]
	email           *form.Control[string]
	password        *form.Control[string]
	confirmPassword *form.Control[string]

	loading        *signal.Signal[bool]
	messageLoading *signal.Signal[bool]
	submitted      *signal.Signal[bool]
	code           *signal.Signal[responses.Code]
	message        *signal.Signal[string]

	service auth.Service
	table   *responses.Table
	logger  *slog.Logger
	metrics Metrics
	policy  ErrorPolicy
	matcher form.ErrorStateMatcher
}

// New builds a controller with a fresh form. A nil table falls back to
// responses.Default().
func New(service auth.Service, table *responses.Table, opts ...Option) *Controller {
	if table == nil {
		table = responses.Default()
	}
	c := &Controller{
		loading:        signal.New(false),
		messageLoading: signal.New(false),
		submitted:      signal.New(false),
		code:           signal.New(responses.Code("")),
		message:        signal.New(""),
		service:        service,
		table:          table,
		logger:         slog.Default(),
		policy:         KeepMessageLoading,
		matcher:        form.DirtyGroupMatcher{},
	}
	for _, opt := range opts {
		opt(c)
	}

	g := form.NewGroup()
	c.name = form.Add(g, FieldName, "",
		form.Required("Name is required"),
		form.PatternRegexp(nameRegexp, "Name may only contain letters and spaces"),
	)
	c.email = form.Add(g, FieldEmail, "",
		form.Required("Email is required"),
		form.PatternRegexp(emailRegexp, "Enter a valid email address"),
	)
	c.password = form.Add(g, FieldPassword, "", form.Required("Password is required"))
	c.confirmPassword = form.Add(g, FieldConfirmPassword, "", form.Required("Please confirm your password"))
	g.AddValidators(form.FieldsMatch(c.password, c.confirmPassword, "Passwords do not match"))
	c.form = g

	return c
}

// Form returns the underlying form group.
func (c *Controller) Form() *form.Group { return c.form }

// Name returns the name control.
func (c *Controller) Name() *form.Control[string] { return c.name }

// Email returns the email control.
func (c *Controller) Email() *form.Control[string] { return c.email }

// Password returns the password control.
func (c *Controller) Password() *form.Control[string] { return c.password }

// ConfirmPassword returns the password confirmation control.
func (c *Controller) ConfirmPassword() *form.Control[string] { return c.confirmPassword }

// Loading is set while a submission is in flight and stays set after a
// successful one.
func (c *Controller) Loading() *signal.Signal[bool] { return c.loading }

// MessageLoading is set while the result message is pending.
func (c *Controller) MessageLoading() *signal.Signal[bool] { return c.messageLoading }

// Submitted is set by the first Submit call.
func (c *Controller) Submitted() *signal.Signal[bool] { return c.submitted }

// Code is the response code of the last successful submission.
func (c *Controller) Code() *signal.Signal[responses.Code] { return c.code }

// Message is the text resolved from Code.
func (c *Controller) Message() *signal.Signal[string] { return c.message }

// Policy returns the configured error policy.
func (c *Controller) Policy() ErrorPolicy { return c.policy }

// Field returns a control by its form name.
func (c *Controller) Field(name string) (*form.Control[string], error) {
	switch name {
	case FieldName:
		return c.name, nil
	case FieldEmail:
		return c.email, nil
	case FieldPassword:
		return c.password, nil
	case FieldConfirmPassword:
		return c.confirmPassword, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Input applies a user edit to the named field.
func (c *Controller) Input(name, value string) error {
	ctrl, err := c.Field(name)
	if err != nil {
		return err
	}
	ctrl.Input(value)
	return nil
}

// Blur marks the named field as touched.
func (c *Controller) Blur(name string) error {
	ctrl, err := c.Field(name)
	if err != nil {
		return err
	}
	ctrl.Blur()
	return nil
}

// Fill applies user edits for every known field present in values.
// Unknown keys are ignored.
func (c *Controller) Fill(values map[string]string) {
	for _, name := range fieldOrder {
		if v, ok := values[name]; ok {
			ctrl, _ := c.Field(name)
			ctrl.Input(v)
		}
	}
}

// ErrorState reports whether ctrl should be displayed as invalid within the
// signup form.
func (c *Controller) ErrorState(ctrl form.AbstractControl) bool {
	return c.matcher.IsErrorState(ctrl, c.form)
}

// Submit validates the form and, when valid, sends one signup request.
//
// It returns ErrInvalidForm without calling the backend when the form is
// invalid, and the backend error wrapped when the call fails.
func (c *Controller) Submit(ctx context.Context) error {
	start := time.Now()
	c.submitted.Set(true)

	if c.form.Invalid() {
		c.logger.Debug("signup rejected by validation",
			"field_errors", c.invalidFields(),
			"group_errors", c.form.Errors().Keys(),
		)
		c.observe(OutcomeInvalid, start)
		return ErrInvalidForm
	}

	c.loading.Set(true)
	c.messageLoading.Set(true)

	req := auth.SignupRequest{
		Name:     c.name.Value(),
		Email:    c.email.Value(),
		Password: c.password.Value(),
	}
	domain := emailDomain(req.Email)
	c.logger.Info("signup submitted", "email_domain", domain)

	resp, err := c.service.Signup(ctx, req)
	if err != nil {
		c.loading.Set(false)
		c.messageLoading.Set(c.policy == KeepMessageLoading)
		c.logger.Warn("signup failed",
			"email_domain", domain,
			"error", err,
			"duration", time.Since(start),
		)
		c.observe(OutcomeError, start)
		return fmt.Errorf("signup: %w", err)
	}

	code := responses.Code(resp.MCode)
	msg, ok := c.table.Lookup(code)
	if !ok {
		c.logger.Warn("signup returned unknown response code", "code", string(code))
	}
	c.code.Set(code)
	c.message.Set(msg)
	c.messageLoading.Set(false)

	c.logger.Info("signup completed",
		"email_domain", domain,
		"code", string(code),
		"duration", time.Since(start),
	)
	c.observe(OutcomeSuccess, start)
	return nil
}

// Reset restores a pristine form and clears every flag and result.
func (c *Controller) Reset() {
	c.form.Reset()
	c.loading.Set(false)
	c.messageLoading.Set(false)
	c.submitted.Set(false)
	c.code.Set("")
	c.message.Set("")
}

// Subscribe registers fn to run after any change to the form, the flags or
// the result. The returned function removes every subscription.
func (c *Controller) Subscribe(fn func()) (unsubscribe func()) {
	stops := []func(){
		c.form.Subscribe(fn),
		c.loading.Subscribe(fn),
		c.messageLoading.Subscribe(fn),
		c.submitted.Subscribe(fn),
		c.code.Subscribe(fn),
		c.message.Subscribe(fn),
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func (c *Controller) observe(outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveSubmit(outcome, time.Since(start))
	}
}

func (c *Controller) invalidFields() []string {
	var names []string
	for _, ctrl := range c.form.Controls() {
		if ctrl.Invalid() {
			names = append(names, ctrl.Name())
		}
	}
	return names
}

func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
