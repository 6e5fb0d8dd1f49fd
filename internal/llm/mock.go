package llm

import (
	"context"
	"sync"
)

// ScriptedCompleter is a deterministic Completer for tests. Each call
// consumes the next scripted step, in order; a step is either a response
// or an error. When the script runs out, the last step repeats.
type ScriptedCompleter struct {
	mu    sync.Mutex
	steps []scriptStep
	next  int

	// Requests records every request received, in call order.
	Requests []CompletionRequest
}

type scriptStep struct {
	response string
	err      error
}

// NewScriptedCompleter creates an empty scripted completer.
func NewScriptedCompleter() *ScriptedCompleter {
	return &ScriptedCompleter{}
}

// Respond appends a successful response step.
func (s *ScriptedCompleter) Respond(response string) *ScriptedCompleter {
	s.steps = append(s.steps, scriptStep{response: response})
	return s
}

// Fail appends an error step.
func (s *ScriptedCompleter) Fail(err error) *ScriptedCompleter {
	s.steps = append(s.steps, scriptStep{err: err})
	return s
}

// Name implements Completer.
func (s *ScriptedCompleter) Name() string {
	return "scripted"
}

// Calls returns how many requests were received.
func (s *ScriptedCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// Complete implements Completer by replaying the script.
func (s *ScriptedCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)

	if len(s.steps) == 0 {
		return "", context.Canceled
	}
	step := s.steps[s.next]
	if s.next < len(s.steps)-1 {
		s.next++
	}
	if step.err != nil {
		return "", step.err
	}
	return step.response, nil
}
