package submit

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// SubmitterFunc adapts a plain function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, req Request) (Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, req Request) (Receipt, error) {
	return f(ctx, req)
}

// ScriptStep is one scripted submission outcome.
type ScriptStep struct {
	Err       error
	Actual    decimal.Decimal // zero means amount + fee
	Signature string
}

// ScriptedSubmitter replays a fixed sequence of outcomes and records
// every request it sees. Once the script runs out, every call succeeds
// with the default additive amount. Safe for concurrent use.
type ScriptedSubmitter struct {
	mu    sync.Mutex
	steps []ScriptStep
	next  int
	calls []Request
}

// NewScriptedSubmitter creates a submitter following steps in order.
func NewScriptedSubmitter(steps ...ScriptStep) *ScriptedSubmitter {
	return &ScriptedSubmitter{steps: steps}
}

func (s *ScriptedSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, req)

	var step ScriptStep
	if s.next < len(s.steps) {
		step = s.steps[s.next]
		s.next++
	}

	if step.Err != nil {
		return Receipt{}, step.Err
	}

	actual := step.Actual
	if actual.IsZero() {
		actual = req.Amount.Add(req.Fee)
	}
	sig := step.Signature
	if sig == "" {
		sig = "scripted"
	}

	return Receipt{ActualAmount: actual, Signature: sig}, nil
}

// Calls returns a copy of every request seen so far.
func (s *ScriptedSubmitter) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many submissions were attempted.
func (s *ScriptedSubmitter) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
