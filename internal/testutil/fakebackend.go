package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/agentboard/agentboard/internal/core"
)

// FakeBackend implements core.Backend for testing. Responses are scripted
// with the With* builders; every call is recorded.
type FakeBackend struct {
	mu sync.Mutex

	executeErr error
	pauseErr   error
	resumeErr  error
	stopErr    error
	statusErr  error

	snapshots []*core.StatusSnapshot // consumed front-to-back; last one repeats
	statusFn  func(sessionID string) (*core.StatusSnapshot, error)

	blockStatus chan struct{} // when set, Status blocks until the channel closes

	calls []Call
}

// Call records one backend invocation.
type Call struct {
	Method    string
	SessionID string
	Time      time.Time
}

// NewFakeBackend creates a backend that acknowledges everything and returns
// empty snapshots.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

// WithExecuteError scripts a failing start call.
func (f *FakeBackend) WithExecuteError(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executeErr = err
	return f
}

// WithPauseError scripts a failing pause call.
func (f *FakeBackend) WithPauseError(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseErr = err
	return f
}

// WithResumeError scripts a failing resume call.
func (f *FakeBackend) WithResumeError(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeErr = err
	return f
}

// WithStopError scripts a failing stop call.
func (f *FakeBackend) WithStopError(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopErr = err
	return f
}

// WithStatusError scripts failing polls.
func (f *FakeBackend) WithStatusError(err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusErr = err
	return f
}

// WithSnapshots queues poll responses. The final snapshot repeats once the
// queue is drained.
func (f *FakeBackend) WithSnapshots(snaps ...*core.StatusSnapshot) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, snaps...)
	return f
}

// WithStatusFunc scripts polls with a custom function.
func (f *FakeBackend) WithStatusFunc(fn func(sessionID string) (*core.StatusSnapshot, error)) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusFn = fn
	return f
}

// BlockStatus makes Status calls block until the returned release function is
// called.
func (f *FakeBackend) BlockStatus() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.blockStatus = ch
	return func() { close(ch) }
}

// Calls returns every recorded invocation of the given method; with no
// method, all calls.
func (f *FakeBackend) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if method == "" {
		return append([]Call(nil), f.calls...)
	}
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeBackend) record(method, sessionID string) {
	f.calls = append(f.calls, Call{Method: method, SessionID: sessionID, Time: time.Now()})
}

// Health implements core.Backend.
func (f *FakeBackend) Health(_ context.Context) (*core.HealthInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("health", "")
	return &core.HealthInfo{Status: "healthy"}, nil
}

// ExecuteWorkflow implements core.Backend.
func (f *FakeBackend) ExecuteWorkflow(_ context.Context, req core.ExecuteWorkflowRequest) (*core.ExecuteWorkflowResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("execute", req.SessionID)
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return &core.ExecuteWorkflowResponse{SessionID: req.SessionID}, nil
}

// Status implements core.Backend.
func (f *FakeBackend) Status(ctx context.Context, sessionID string) (*core.StatusSnapshot, error) {
	f.mu.Lock()
	f.record("status", sessionID)
	block := f.blockStatus
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.statusFn != nil {
		return f.statusFn(sessionID)
	}
	if len(f.snapshots) == 0 {
		return &core.StatusSnapshot{SessionID: sessionID, IsRunning: true}, nil
	}
	snap := f.snapshots[0]
	if len(f.snapshots) > 1 {
		f.snapshots = f.snapshots[1:]
	}
	return snap, nil
}

// Pause implements core.Backend.
func (f *FakeBackend) Pause(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pause", sessionID)
	return f.pauseErr
}

// Resume implements core.Backend.
func (f *FakeBackend) Resume(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("resume", sessionID)
	return f.resumeErr
}

// Stop implements core.Backend.
func (f *FakeBackend) Stop(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop", sessionID)
	return f.stopErr
}
