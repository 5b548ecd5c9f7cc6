package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flosch/pongo2/v6"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/signup/pkg/auth"
	"github.com/vango-dev/signup/pkg/signup"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := pongo2.Context{"signupPath": PathSignup}
	if s.provider != nil {
		if p, ok := s.provider.Principal(r.Context()); ok {
			data["principal"] = &p
		}
	}
	s.render(w, r, http.StatusOK, "home.html", data)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	ctrl := s.newController(s.requestLog(r))
	s.render(w, r, http.StatusOK, "signup.html", signupContext(ctrl.Snapshot(), PathSignup, PathLive))
}

func (s *Server) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLog(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	ctrl := s.newController(logger)
	values := make(map[string]string, 4)
	for _, name := range []string{signup.FieldName, signup.FieldEmail, signup.FieldPassword, signup.FieldConfirmPassword} {
		if _, ok := r.PostForm[name]; ok {
			values[name] = r.PostForm.Get(name)
		}
	}
	ctrl.Fill(values)

	status := http.StatusOK
	if err := ctrl.Submit(r.Context()); err != nil {
		switch {
		case errors.Is(err, signup.ErrInvalidForm):
			status = http.StatusUnprocessableEntity
		default:
			status = http.StatusBadGateway
			var se *auth.StatusError
			if errors.As(err, &se) {
				logger.Warn("auth backend rejected signup", "status", se.StatusCode)
			}
		}
	}

	s.render(w, r, status, "signup.html", signupContext(ctrl.Snapshot(), PathSignup, PathLive))
}

// render buffers the page so a template error can still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pongo2.Context) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		s.requestLog(r).Error("render failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) requestLog(r *http.Request) *slog.Logger {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return s.logger.With("request_id", id)
	}
	return s.logger
}
