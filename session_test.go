package codeshift

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSession_Convert(t *testing.T) {
	e, _ := newTestEngine(&stubRules{out: "converted"}, &stubModel{response: "converted"})
	s := NewSession("s1", e)

	res, err := s.Convert(context.Background(), tsSource, TypeScript, Java, Python)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Targets != [2]Language{Java, Python} {
		t.Errorf("Unexpected targets %v", res.Targets)
	}
	for i, r := range res.Results {
		if r == nil || r.Content != "converted" {
			t.Errorf("Result %d: unexpected %+v", i, r)
		}
	}
	if res.Status == "" {
		t.Error("Expected an overall status")
	}
	if s.Busy() {
		t.Error("Session should be idle after Convert returns")
	}
	if s.ID() != "s1" {
		t.Errorf("Unexpected ID %q", s.ID())
	}
}

func TestSession_Validation(t *testing.T) {
	model := &stubModel{response: "x"}
	e, _ := newTestEngine(&stubRules{}, model)
	s := NewSession("s1", e)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		from   Language
		t1, t2 Language
		want   error
	}{
		{"empty source", " \t\n", TypeScript, Java, Python, ErrEmptySource},
		{"first target equals source", tsSource, Java, Java, Python, ErrSameLanguage},
		{"second target equals source", tsSource, Python, Java, Python, ErrSameLanguage},
		{"unknown source", tsSource, "cobol", Java, Python, ErrUnsupportedLanguage},
		{"unknown target", tsSource, TypeScript, "perl", Python, ErrUnsupportedLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Convert(ctx, tt.source, tt.from, tt.t1, tt.t2); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if model.CallCount() != 0 || e.Stats().TotalConversions != 0 {
		t.Error("Rejected input must not reach the engine")
	}
	if s.Busy() {
		t.Error("Validation failures must release the session")
	}
}

func TestSession_BusyRejectsSecondRequest(t *testing.T) {
	model := &stubModel{block: make(chan struct{}), response: "int total = 5;"}
	e, _ := newTestEngine(&stubRules{out: "int total = 5;"}, model)
	s := NewSession("s1", e)

	done := make(chan error, 1)
	go func() {
		_, err := s.Convert(context.Background(), tsSource, TypeScript, Java, CSharp)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for model.CallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Model was never called")
		}
		time.Sleep(time.Millisecond)
	}

	if !s.Busy() {
		t.Error("Expected session to report busy")
	}
	if _, err := s.Convert(context.Background(), "other", TypeScript, Python, Java); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}

	close(model.block)
	if err := <-done; err != nil {
		t.Fatalf("First conversion failed: %v", err)
	}
	// The model confirmed the first target, lifting confidence to 1.0, so
	// the second target trusts the rules.
	if model.CallCount() != 1 {
		t.Errorf("Expected 1 model call, got %d", model.CallCount())
	}
	if got := e.Stats(); got.TotalConversions != 2 || got.ManualSuccesses != 2 {
		t.Errorf("Unexpected stats after dual conversion: %+v", got)
	}

	// The busy rejection was a no-op; the session accepts work again
	if _, err := s.Convert(context.Background(), tsSource, TypeScript, Java, CSharp); err != nil {
		t.Errorf("Expected session usable again, got %v", err)
	}
}

// panicRules panics on every translation.
type panicRules struct{}

func (panicRules) Translate(code string, from, to Language) string {
	panic("rule table corrupted")
}

func TestSession_RecoversPanic(t *testing.T) {
	e, _ := newTestEngine(nil, nil)
	e.rules = panicRules{}
	s := NewSession("s1", e)

	_, err := s.Convert(context.Background(), tsSource, TypeScript, Java, Python)
	if !errors.Is(err, ErrConversionFailed) {
		t.Fatalf("Expected ErrConversionFailed, got %v", err)
	}
	if s.Busy() {
		t.Error("Panic must release the in-flight guard")
	}

	// Engine lock must have been released too
	done := make(chan struct{})
	go func() {
		e.Stats()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Engine lock held after panic")
	}
}

func TestSession_LastUsed(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e, _ := newTestEngine(&stubRules{}, nil, WithClock(func() time.Time { return now }))
	s := NewSession("s1", e)

	if !s.LastUsed().Equal(now) {
		t.Errorf("Expected %v, got %v", now, s.LastUsed())
	}
}
