package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/signup/pkg/signup"
)

// Live message types.
const (
	EventInput  = "input"
	EventBlur   = "blur"
	EventSubmit = "submit"
	EventReset  = "reset"

	MessageState = "state"
	MessageError = "error"
)

// liveEvent is a message from the browser.
type liveEvent struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// liveMessage is a message to the browser.
type liveMessage struct {
	Type  string        `json:"type"`
	State *signup.State `json:"state,omitempty"`
	Error string        `json:"error,omitempty"`
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		s.requestLog(r).Warn("live upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	logger := s.requestLog(r).With("live_id", id)
	lc := &liveConn{
		conn:         conn,
		ctrl:         s.newController(logger),
		logger:       logger,
		readTimeout:  s.config.LiveReadTimeout,
		writeTimeout: s.config.LiveWriteTimeout,
		dirty:        make(chan struct{}, 1),
		outbox:       make(chan liveMessage, 8),
	}
	if s.metrics != nil {
		lc.onError = s.metrics.LiveError
		s.metrics.LiveOpened()
		defer s.metrics.LiveClosed()
	}

	logger.Debug("live channel opened")
	lc.run(context.WithoutCancel(r.Context()))
	logger.Debug("live channel closed")
}

// liveConn serves one WebSocket connection. A single writer goroutine owns
// all writes to conn; the read loop and submit goroutines only signal it.
type liveConn struct {
	conn         *websocket.Conn
	ctrl         *signup.Controller
	logger       *slog.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration
	onError      func(error)

	// dirty holds at most one pending state push.
	dirty  chan struct{}
	outbox chan liveMessage

	submitting atomic.Bool
	wg         sync.WaitGroup
}

func (lc *liveConn) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	unsubscribe := lc.ctrl.Subscribe(lc.markDirty)
	defer unsubscribe()

	lc.wg.Add(1)
	go func() {
		defer lc.wg.Done()
		lc.writeLoop(ctx)
	}()

	lc.markDirty()
	lc.readLoop(ctx)

	cancel()
	lc.wg.Wait()
	_ = lc.conn.Close()
}

func (lc *liveConn) markDirty() {
	select {
	case lc.dirty <- struct{}{}:
	default:
	}
}

func (lc *liveConn) send(msg liveMessage) {
	select {
	case lc.outbox <- msg:
	default:
		lc.logger.Warn("live outbox full, dropping message", "type", msg.Type)
	}
}

func (lc *liveConn) readLoop(ctx context.Context) {
	_ = lc.conn.SetReadDeadline(time.Now().Add(lc.readTimeout))
	lc.conn.SetPongHandler(func(string) error {
		return lc.conn.SetReadDeadline(time.Now().Add(lc.readTimeout))
	})

	for {
		var ev liveEvent
		if err := lc.conn.ReadJSON(&ev); err != nil {
			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					lc.fail(err)
				}
				return
			case isDecodeError(err):
				lc.fail(err)
				lc.send(liveMessage{Type: MessageError, Error: "invalid message"})
				continue
			default:
				if ctx.Err() == nil {
					lc.logger.Debug("live read ended", "error", err)
				}
				return
			}
		}
		_ = lc.conn.SetReadDeadline(time.Now().Add(lc.readTimeout))

		if err := lc.handle(ctx, ev); err != nil {
			lc.fail(err)
			lc.send(liveMessage{Type: MessageError, Error: err.Error()})
		}
	}
}

func (lc *liveConn) handle(ctx context.Context, ev liveEvent) error {
	switch ev.Type {
	case EventInput:
		return lc.ctrl.Input(ev.Field, ev.Value)
	case EventBlur:
		return lc.ctrl.Blur(ev.Field)
	case EventReset:
		lc.ctrl.Reset()
		return nil
	case EventSubmit:
		lc.submit(ctx)
		return nil
	default:
		return fmt.Errorf("invalid event type %q", ev.Type)
	}
}

// submit runs Submit in the background so the read loop keeps serving
// input. Submit events are dropped while one is pending or once Loading is
// set, mirroring the disabled submit button.
func (lc *liveConn) submit(ctx context.Context) {
	if lc.ctrl.Loading().Get() || !lc.submitting.CompareAndSwap(false, true) {
		lc.logger.Debug("submit dropped while loading")
		return
	}

	lc.wg.Add(1)
	go func() {
		defer lc.wg.Done()
		defer lc.submitting.Store(false)

		err := lc.ctrl.Submit(ctx)
		if err != nil && !errors.Is(err, signup.ErrInvalidForm) {
			lc.logger.Warn("live submit failed", "error", err)
		}
		// Submitted changes even when the form is invalid; make sure the
		// client sees the final state.
		lc.markDirty()
	}()
}

func (lc *liveConn) writeLoop(ctx context.Context) {
	ping := time.NewTicker(lc.readTimeout * 9 / 10)
	defer ping.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			lc.writeClose()
			return
		case <-lc.dirty:
			state := lc.ctrl.Snapshot()
			err = lc.write(liveMessage{Type: MessageState, State: &state})
		case msg := <-lc.outbox:
			err = lc.write(msg)
		case <-ping.C:
			_ = lc.conn.SetWriteDeadline(time.Now().Add(lc.writeTimeout))
			err = lc.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			lc.fail(err)
			// Unblock the read loop.
			_ = lc.conn.Close()
			return
		}
	}
}

func (lc *liveConn) write(msg liveMessage) error {
	_ = lc.conn.SetWriteDeadline(time.Now().Add(lc.writeTimeout))
	return lc.conn.WriteJSON(msg)
}

func (lc *liveConn) writeClose() {
	_ = lc.conn.SetWriteDeadline(time.Now().Add(lc.writeTimeout))
	_ = lc.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (lc *liveConn) fail(err error) {
	lc.logger.Debug("live error", "error", err)
	if lc.onError != nil {
		lc.onError(err)
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
