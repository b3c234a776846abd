// Package testutil provides scripted agent streams for tests
package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/killallgit/cortex-chat/pkg/cortex"
)

// FakeAgent replays scripted SSE bodies in order, cycling when exhausted
type FakeAgent struct {
	mu           sync.Mutex
	responses    []string
	currentIndex int
	callCount    int
	lastRequest  cortex.RunRequest
	errorOnCall  int // If > 0, fail this call number
	err          error
}

// NewFakeAgent creates a fake agent with predefined stream bodies
func NewFakeAgent(responses ...string) *FakeAgent {
	return &FakeAgent{responses: responses}
}

// Run returns the next scripted body
func (f *FakeAgent) Run(ctx context.Context, req cortex.RunRequest) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount++
	f.lastRequest = req

	if err := ctx.Err(); err != nil {
		return nil, &cortex.TransportError{Err: err}
	}

	if f.errorOnCall > 0 && f.callCount == f.errorOnCall {
		if f.err != nil {
			return nil, f.err
		}
		return nil, &cortex.TransportError{Err: fmt.Errorf("fake error on call %d", f.callCount)}
	}

	if len(f.responses) == 0 {
		return io.NopCloser(strings.NewReader(Done())), nil
	}

	body := f.responses[f.currentIndex]
	f.currentIndex = (f.currentIndex + 1) % len(f.responses)
	return io.NopCloser(strings.NewReader(body)), nil
}

// FailOnCall makes call n (1-based) return err. A nil err fails with a
// generic transport error.
func (f *FakeAgent) FailOnCall(n int, err error) *FakeAgent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorOnCall = n
	f.err = err
	return f
}

// CallCount returns the number of Run calls
func (f *FakeAgent) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// LastRequest returns the request of the most recent call
func (f *FakeAgent) LastRequest() cortex.RunRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequest
}
