package vtest

import (
	"context"
	"sync"

	"github.com/vango-dev/signup/pkg/auth"
)

// FakeService is a scripted auth.Service that records its calls.
type FakeService struct {
	mu     sync.Mutex
	calls  []auth.SignupRequest
	resp   auth.SignupResponse
	err    error
	onCall func(auth.SignupRequest)
	gate   chan struct{}
}

var _ auth.Service = (*FakeService)(nil)

// NewFakeService returns a service that answers with an empty code.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// RespondWith makes every call succeed with code.
func (f *FakeService) RespondWith(code string) *FakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resp = auth.SignupResponse{MCode: code}
	f.err = nil
	return f
}

// FailWith makes every call fail with err.
func (f *FakeService) FailWith(err error) *FakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// OnCall registers a hook run inside each call, after it is recorded and
// before it returns.
func (f *FakeService) OnCall(fn func(auth.SignupRequest)) *FakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCall = fn
	return f
}

// Hold blocks subsequent calls until the returned release func is called
// or the call's context is done. release is safe to call more than once.
func (f *FakeService) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(gate)
		})
	}
}

// Signup records req and returns the scripted result.
func (f *FakeService) Signup(ctx context.Context, req auth.SignupRequest) (auth.SignupResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	resp, err, hook, gate := f.resp, f.err, f.onCall, f.gate
	f.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return auth.SignupResponse{}, ctx.Err()
		}
	}
	if err != nil {
		return auth.SignupResponse{}, err
	}
	return resp, nil
}

// Calls returns a copy of the recorded requests.
func (f *FakeService) Calls() []auth.SignupRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]auth.SignupRequest(nil), f.calls...)
}

// CallCount returns the number of recorded requests.
func (f *FakeService) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
