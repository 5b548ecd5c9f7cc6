package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/vango-dev/signup/internal/errors"
	"github.com/vango-dev/signup/pkg/auth"
	"github.com/vango-dev/signup/pkg/guard"
	"github.com/vango-dev/signup/pkg/signup"
)

// errAborted is returned when the user interrupts the prompt.
var errAborted = stderrors.New("prompt aborted")

// promptDriver asks for one answer at a time. validate runs on every
// answer; a non-nil error asks again.
type promptDriver interface {
	Input(ctx context.Context, message, help string, validate func(string) error) (string, error)
	Password(ctx context.Context, message, help string, validate func(string) error) (string, error)
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, message, help string, validate func(string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: message, Help: help}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(stringValidator(validate))); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Password(ctx context.Context, message, help string, validate func(string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Password{Message: message, Help: help}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(stringValidator(validate))); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func stringValidator(fn func(string) error) survey.Validator {
	return func(ans interface{}) error {
		s, _ := ans.(string)
		return fn(s)
	}
}

func translateSurveyErr(err error) error {
	if stderrors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

type promptField struct {
	name    string
	message string
	help    string
	secret  bool
}

var promptFields = []promptField{
	{name: signup.FieldName, message: "Name:", help: "Letters and spaces only"},
	{name: signup.FieldEmail, message: "Email:"},
	{name: signup.FieldPassword, message: "Password:", secret: true},
	{name: signup.FieldConfirmPassword, message: "Confirm password:", secret: true},
}

func promptCmd(root *rootOptions) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Sign up from the terminal",
		Long: `Ask for the signup fields one by one, validating each answer
with the same rules as the signup page, then submit.

With --session, the value is checked like the session cookie and the
prompt exits early when it belongs to a signed-in user.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), root.verbose)
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if session != "" {
				d := resolveSession(a.provider, cfg.Session.CookieName, session, cfg.Server.RedirectTarget)
				if d.Redirect {
					fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s.\n", displayName(d.Principal))
					return nil
				}
			}

			ctrl := signup.New(a.service, a.table, a.controllerOptions()...)
			return runPrompt(cmd.Context(), ctrl, surveyDriver{}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "Session cookie value or token to check before prompting")

	return cmd
}

// resolveSession runs the provider's middleware over a request carrying
// value as the session cookie, then applies the guard decision.
func resolveSession(provider auth.Provider, cookieName, value, target string) guard.Decision {
	if provider == nil {
		return guard.Decision{Target: target}
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: value})

	var d guard.Decision
	h := provider.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d = guard.Resolve(r.Context(), provider, target)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if d.Target == "" {
		d.Target = target
	}
	return d
}

func displayName(p auth.Principal) string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Email != "":
		return p.Email
	default:
		return p.ID
	}
}

// runPrompt fills ctrl field by field and submits it.
func runPrompt(ctx context.Context, ctrl *signup.Controller, driver promptDriver, out io.Writer) error {
	for _, f := range promptFields {
		validate := fieldValidator(ctrl, f.name)
		var err error
		if f.secret {
			_, err = driver.Password(ctx, f.message, f.help, validate)
		} else {
			_, err = driver.Input(ctx, f.message, f.help, validate)
		}
		if err != nil {
			if stderrors.Is(err, errAborted) {
				return errors.New("S401").Wrap(err)
			}
			return err
		}
	}

	fmt.Fprintln(out, "Creating your account...")
	if err := ctrl.Submit(ctx); err != nil {
		if stderrors.Is(err, signup.ErrInvalidForm) {
			return errors.New("S103").WithDetail("The form is still invalid").Wrap(err)
		}
		return errors.New("S201").Wrap(err)
	}

	if msg := ctrl.Message().Get(); msg != "" {
		fmt.Fprintln(out, msg)
	} else {
		fmt.Fprintf(out, "Signup finished with code %s.\n", ctrl.Code().Get())
	}
	return nil
}

// fieldValidator applies each answer to the controller and reports the
// field's errors. The confirmation field also reports the group mismatch.
func fieldValidator(ctrl *signup.Controller, name string) func(string) error {
	return func(value string) error {
		if err := ctrl.Input(name, value); err != nil {
			return err
		}
		field, err := ctrl.Field(name)
		if err != nil {
			return err
		}

		msgs := field.Errors().Messages()
		if name == signup.FieldConfirmPassword {
			msgs = append(msgs, ctrl.Form().Errors().Messages()...)
		}
		if len(msgs) > 0 {
			return stderrors.New(strings.Join(msgs, "; "))
		}
		return nil
	}
}
