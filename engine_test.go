package codeshift

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ZaguanLabs/codeshift/cache"
)

const tsSource = "let total = 5;"

func newTestEngine(rules *stubRules, model ModelTranslator, opts ...EngineOption) (*Engine, *memStore) {
	store := &memStore{}
	opts = append([]EngineOption{WithStore(store)}, opts...)
	return NewEngine(rules, model, opts...), store
}

func TestConvert_Identity(t *testing.T) {
	rules := &stubRules{}
	model := &stubModel{response: "unused"}
	e, store := newTestEngine(rules, model)

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: TypeScript})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Content != tsSource {
		t.Errorf("Expected source back, got %q", res.Content)
	}
	if res.Source != SourceIdentity {
		t.Errorf("Expected identity source, got %s", res.Source)
	}
	if e.Stats().TotalConversions != 0 || e.PatternCount() != 0 {
		t.Error("Identity conversion must not mutate state")
	}
	if model.CallCount() != 0 || rules.calls.Load() != 0 {
		t.Error("Identity conversion must not call any translator")
	}
	if store.SaveCount() != 0 {
		t.Error("Identity conversion must not persist")
	}
}

func TestConvert_InputValidation(t *testing.T) {
	e, _ := newTestEngine(&stubRules{}, &stubModel{})
	ctx := context.Background()

	if _, err := e.Convert(ctx, Request{Source: "  \n", From: Java, To: Python}); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Expected ErrEmptySource, got %v", err)
	}
	if _, err := e.Convert(ctx, Request{Source: "x", From: "cobol", To: Python}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
	if _, err := e.Convert(ctx, Request{Source: "x", From: Java, To: "perl"}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestConvert_AdaptiveFreshStateCallsModel(t *testing.T) {
	rules := &stubRules{out: "int total = 5;"}
	model := &stubModel{response: "public class Main { static int total = 5; }"}
	e, _ := newTestEngine(rules, model)

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if model.CallCount() != 1 {
		t.Fatalf("Expected 1 model call at initial confidence, got %d", model.CallCount())
	}
	if model.last.Model != DefaultModel || model.last.BaseURL != DefaultBaseURL {
		t.Errorf("Expected default model settings, got %+v", model.last)
	}
	if model.last.Code != tsSource || model.last.From != TypeScript || model.last.To != Java {
		t.Errorf("Unexpected model request: %+v", model.last)
	}
	if res.Source != SourceModel {
		t.Errorf("Expected model to win, got %s", res.Source)
	}
	if res.Key != PatternKey(tsSource, TypeScript, Java, NormalizeLiterals) {
		t.Errorf("Unexpected key %q", res.Key)
	}
}

func TestConvert_CacheHitSkipsModel(t *testing.T) {
	rules := &stubRules{out: "int total = 5;"}
	model := &stubModel{response: "public class Main { static int total = 5; }"}
	e, _ := newTestEngine(rules, model)
	ctx := context.Background()
	req := Request{Source: tsSource, From: TypeScript, To: Java}

	first, err := e.Convert(ctx, req)
	if err != nil {
		t.Fatalf("First convert failed: %v", err)
	}
	statsBefore := e.Stats()

	second, err := e.Convert(ctx, req)
	if err != nil {
		t.Fatalf("Second convert failed: %v", err)
	}

	if second.Source != SourceCache {
		t.Errorf("Expected cache hit, got %s", second.Source)
	}
	if second.Content != first.Content {
		t.Errorf("Cache returned %q, want %q", second.Content, first.Content)
	}
	if model.CallCount() != 1 {
		t.Errorf("Expected no further model calls, got %d", model.CallCount())
	}
	if e.Stats() != statsBefore {
		t.Errorf("Cache hit must not touch stats: %+v vs %+v", e.Stats(), statsBefore)
	}

	// Literals differ, structure is the same: still a hit
	third, err := e.Convert(ctx, Request{Source: "let total = 7;", From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Third convert failed: %v", err)
	}
	if third.Source != SourceCache {
		t.Errorf("Expected normalized cache hit, got %s", third.Source)
	}
}

func TestConvert_SimilarityThresholdIsStrict(t *testing.T) {
	tests := []struct {
		name       string
		rule       string
		model      string
		wantSource Source
	}{
		{"exactly 0.8 goes to model", "a b c d e", "a b c d f", SourceModel},
		{"0.81 keeps rule", "", "", SourceRulesVerified},
	}
	tests[1].rule, tests[1].model = sharedTokens(100, 81)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(&stubRules{out: tt.rule}, &stubModel{response: tt.model})

			res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if res.Source != tt.wantSource {
				t.Errorf("Expected %s, got %s (similarity %v)", tt.wantSource, res.Source, res.Similarity)
			}

			want := tt.model
			if tt.wantSource == SourceRulesVerified {
				want = tt.rule
			}
			if res.Content != want {
				t.Errorf("Unexpected content %q", res.Content)
			}
			cached, ok := e.cache.Get(res.Key)
			if !ok || cached != want {
				t.Errorf("Expected winner cached, got %q (ok=%v)", cached, ok)
			}
		})
	}
}

func TestConvert_RuleVerifiedRecordsSuccess(t *testing.T) {
	rule, model := sharedTokens(100, 90)
	e, _ := newTestEngine(&stubRules{out: rule}, &stubModel{response: model})

	if _, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	s := e.Stats()
	if s.TotalConversions != 1 || s.ManualSuccesses != 1 || s.AICorrections != 0 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if s.CurrentConfidence != 1 {
		t.Errorf("Expected confidence 1, got %v", s.CurrentConfidence)
	}
	if len(e.History(0)) != 0 {
		t.Error("A verified rule result must not add history")
	}
}

func TestConvert_ModelCorrection(t *testing.T) {
	rule := "int x = 5;"
	model := "import java.util.*;\nx: int = 5;"
	if got := Similarity(rule, model); got != 0.5 {
		t.Fatalf("Test texts should score 0.5, got %v", got)
	}

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e, store := newTestEngine(&stubRules{out: rule}, &stubModel{response: model},
		WithClock(func() time.Time { return fixed }))

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Source != SourceModel || res.Content != model {
		t.Errorf("Expected model result, got %s %q", res.Source, res.Content)
	}
	if res.Similarity != 0.5 {
		t.Errorf("Expected similarity 0.5, got %v", res.Similarity)
	}
	if cached, _ := e.cache.Get(res.Key); cached != model {
		t.Errorf("Expected model result cached, got %q", cached)
	}

	s := e.Stats()
	if s.TotalConversions != 1 || s.AICorrections != 1 || s.ManualSuccesses != 0 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if s.CurrentConfidence != 0 {
		t.Errorf("Expected confidence 0, got %v", s.CurrentConfidence)
	}

	if len(res.Differences) != 2 {
		t.Fatalf("Expected 2 differences, got %+v", res.Differences)
	}
	history := e.History(0)
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
	h := history[0]
	if h.ID == "" || h.Key != res.Key || h.Source != tsSource || h.RuleResult != rule || h.ModelResult != model {
		t.Errorf("Unexpected history entry %+v", h)
	}
	if !h.Timestamp.Equal(fixed) {
		t.Errorf("Expected timestamp %v, got %v", fixed, h.Timestamp)
	}

	if store.snap == nil || len(store.snap.History) != 1 || len(store.snap.Patterns) != 1 {
		t.Errorf("Expected persisted snapshot with the correction, got %+v", store.snap)
	}
}

func TestConvert_ModelTimeoutFallsBack(t *testing.T) {
	rules := &stubRules{out: "int total = 5;"}
	model := &stubModel{block: make(chan struct{})}
	defer close(model.block)
	e, store := newTestEngine(rules, model)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := e.Convert(ctx, Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert must not fail on timeout: %v", err)
	}

	if res.Source != SourceFallback || res.Content != rules.out {
		t.Errorf("Expected rule fallback, got %s %q", res.Source, res.Content)
	}
	if cached, ok := e.cache.Get(res.Key); !ok || cached != rules.out {
		t.Errorf("Expected rule result cached, got %q", cached)
	}
	s := e.Stats()
	if s.TotalConversions != 1 || s.ManualSuccesses != 1 {
		t.Errorf("Expected a recorded manual success, got %+v", s)
	}
	if store.SaveCount() != 1 {
		t.Errorf("Expected state persisted once despite the expired context, got %d", store.SaveCount())
	}
}

func TestConvert_ModelFailuresFallBack(t *testing.T) {
	tests := []struct {
		name  string
		model ModelTranslator
	}{
		{"unavailable", &stubModel{err: &ModelUnavailableError{Message: "connection refused"}}},
		{"comment only output", &stubModel{response: "// Converted to Java using Ollama AI\n// nothing"}},
		{"empty output", &stubModel{response: "   "}},
		{"no backend", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(&stubRules{out: "int total = 5;"}, tt.model)

			res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if res.Source != SourceFallback {
				t.Errorf("Expected fallback, got %s", res.Source)
			}
			if res.Content != "int total = 5;" {
				t.Errorf("Expected rule content, got %q", res.Content)
			}
		})
	}
}

func TestConvert_AdaptiveTrustsRulesAboveThreshold(t *testing.T) {
	store := &memStore{snap: &Snapshot{Stats: &Stats{TotalConversions: 10, ManualSuccesses: 9, AICorrections: 1}}}
	model := &stubModel{response: "unused"}
	e := NewEngine(&stubRules{out: "int total = 5;"}, model, WithStore(store))
	if err := e.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Source != SourceRules {
		t.Errorf("Expected trusted rules, got %s", res.Source)
	}
	if model.CallCount() != 0 {
		t.Errorf("Expected no model call above threshold, got %d", model.CallCount())
	}
	if s := e.Stats(); s.TotalConversions != 11 || s.ManualSuccesses != 10 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if e.PatternCount() != 0 {
		t.Error("Trusted rule results are not cached")
	}
}

func TestConvert_AlwaysModel(t *testing.T) {
	store := &memStore{snap: &Snapshot{Stats: &Stats{TotalConversions: 10, ManualSuccesses: 10}}}
	model := &stubModel{response: "int total = 5;"}
	e := NewEngine(&stubRules{out: "int total = 5;"}, model, WithStore(store), WithMode(ModeAlwaysModel))
	if err := e.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if model.CallCount() != 1 {
		t.Errorf("Expected a model call at full confidence, got %d", model.CallCount())
	}
	if res.Source != SourceRulesVerified || res.Similarity != 1 {
		t.Errorf("Expected verified rule result, got %s %v", res.Source, res.Similarity)
	}
}

func TestConvert_Disabled(t *testing.T) {
	model := &stubModel{response: "unused"}
	e, _ := newTestEngine(&stubRules{out: "int total = 5;"}, model, WithMode(ModeDisabled))

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Source != SourceRules || model.CallCount() != 0 {
		t.Errorf("Expected rules without model call, got %s (%d calls)", res.Source, model.CallCount())
	}
	if e.Stats().TotalConversions != 1 {
		t.Error("Disabled mode still records outcomes")
	}
}

func TestConvert_ManualOnlyBypassesLearning(t *testing.T) {
	key := PatternKey(tsSource, TypeScript, Java, NormalizeLiterals)
	patterns := cache.NewInMemoryCache()
	if err := patterns.Set(key, "learned"); err != nil {
		t.Fatal(err)
	}

	model := &stubModel{response: "unused"}
	e, store := newTestEngine(&stubRules{out: "int total = 5;"}, model,
		WithCache(patterns), WithMode(ModeManualOnly))

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if res.Content != "int total = 5;" || res.Source != SourceRules {
		t.Errorf("Expected the rule result, got %s %q", res.Source, res.Content)
	}
	if res.Key != "" {
		t.Errorf("Manual-only results carry no key, got %q", res.Key)
	}
	if model.CallCount() != 0 {
		t.Error("Manual-only must not call the model")
	}
	if e.Stats().TotalConversions != 0 {
		t.Error("Manual-only must not record stats")
	}
	if patterns.Len() != 1 {
		t.Error("Manual-only must not write the cache")
	}
	if store.SaveCount() != 0 {
		t.Error("Manual-only must not persist")
	}
}

func TestConvert_ConfidenceStaysInRange(t *testing.T) {
	rule, near := sharedTokens(20, 19)
	model := &stubModel{response: near}
	e, _ := newTestEngine(&stubRules{out: rule}, model, WithMode(ModeAlwaysModel))

	for i := 0; i < 30; i++ {
		if i%3 == 0 {
			model.mu.Lock()
			model.response = "completely different output here"
			model.mu.Unlock()
		} else {
			model.mu.Lock()
			model.response = near
			model.mu.Unlock()
		}
		res, err := e.Convert(context.Background(), Request{Source: fmt.Sprintf("let v%d = 1;", i), From: TypeScript, To: Java})
		if err != nil {
			t.Fatalf("Convert %d failed: %v", i, err)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Fatalf("Confidence %v out of range", res.Confidence)
		}
	}
	if s := e.Stats(); s.TotalConversions != 30 || s.ManualSuccesses+s.AICorrections != 30 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestConvert_ModelCallDoesNotHoldLock(t *testing.T) {
	model := &stubModel{block: make(chan struct{}), response: "int total = 5;"}
	e, _ := newTestEngine(&stubRules{out: "int total = 5;"}, model)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Java})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for model.CallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Model was never called")
		}
		time.Sleep(time.Millisecond)
	}

	statsDone := make(chan Stats, 1)
	go func() { statsDone <- e.Stats() }()
	select {
	case s := <-statsDone:
		if s.TotalConversions != 0 {
			t.Errorf("Expected no recorded outcome while the model runs, got %+v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("Engine state is locked during the model call")
	}

	close(model.block)
	<-done
}

func TestConvert_Concurrent(t *testing.T) {
	model := &stubModel{response: "completely different output"}
	e, _ := newTestEngine(&stubRules{}, model)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := fmt.Sprintf("function f%d() {}", i)
			if _, err := e.Convert(context.Background(), Request{Source: src, From: JavaScript, To: Python}); err != nil {
				t.Errorf("Convert %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := e.Stats().TotalConversions; got != 20 {
		t.Errorf("Expected 20 recorded conversions, got %d", got)
	}
	if e.PatternCount() != 20 {
		t.Errorf("Expected 20 learned patterns, got %d", e.PatternCount())
	}
}

func TestConvert_PersistFailureDoesNotFailConversion(t *testing.T) {
	store := &memStore{err: errors.New("disk full"), failures: 100}
	e := NewEngine(&stubRules{out: "x"}, &stubModel{response: "y = 1"}, WithStore(store))

	res, err := e.Convert(context.Background(), Request{Source: tsSource, From: TypeScript, To: Python})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.Content == "" {
		t.Error("Expected usable content")
	}
	if store.SaveCount() != 1 {
		t.Errorf("Expected a save attempt, got %d", store.SaveCount())
	}
}

func TestEngine_RestoreMergesOverDefaults(t *testing.T) {
	store := &memStore{snap: &Snapshot{
		Stats:    &Stats{TotalConversions: 4, ManualSuccesses: 3, AICorrections: 1},
		Patterns: [][2]string{{"a->b:x", "one"}, {"", "skipped"}, {"a->b:y", "two"}},
		History:  []HistoryEntry{{ID: "h1"}},
		Settings: &Settings{Mode: ModeAdaptive, ConfidenceThreshold: 0, Model: "codellama:7b"},
	}}
	e := NewEngine(&stubRules{}, nil, WithStore(store))

	if err := e.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if s := e.Stats(); s.TotalConversions != 4 || s.CurrentConfidence != 0.75 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if e.PatternCount() != 2 {
		t.Errorf("Expected 2 patterns, got %d", e.PatternCount())
	}
	if len(e.History(0)) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(e.History(0)))
	}
	s := e.Settings()
	if s.ConfidenceThreshold != 0 {
		t.Errorf("Expected a deliberate zero threshold to survive, got %v", s.ConfidenceThreshold)
	}
	if s.Model != "codellama:7b" || s.BaseURL != DefaultBaseURL {
		t.Errorf("Expected model override with default URL, got %+v", s)
	}
}

func TestEngine_RestoreEmptyStore(t *testing.T) {
	e := NewEngine(&stubRules{}, nil, WithStore(&memStore{}))
	if err := e.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if e.Stats().CurrentConfidence != InitialConfidence {
		t.Error("Expected defaults after restoring nothing")
	}
	if e.Settings() != DefaultSettings() {
		t.Errorf("Expected default settings, got %+v", e.Settings())
	}
}

func TestEngine_PatchSettings(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }
	str := func(s string) *string { return &s }
	mode := func(m Mode) *Mode { return &m }

	tests := []struct {
		name    string
		patch   SettingsPatch
		want    Settings
		invalid bool
	}{
		{
			name:  "all fields",
			patch: SettingsPatch{Mode: mode(ModeDisabled), ConfidenceThreshold: ptr(0), Model: str("codellama:13b"), BaseURL: str("http://gpu:11434/")},
			want:  Settings{Mode: ModeDisabled, ConfidenceThreshold: 0, Model: "codellama:13b", BaseURL: "http://gpu:11434"},
		},
		{
			name:  "nil fields kept",
			patch: SettingsPatch{Model: str("codellama:7b")},
			want:  Settings{Mode: ModeAdaptive, ConfidenceThreshold: DefaultConfidenceThreshold, Model: "codellama:7b", BaseURL: DefaultBaseURL},
		},
		{name: "bad mode with valid threshold", patch: SettingsPatch{Mode: mode("turbo"), ConfidenceThreshold: ptr(0.5)}, invalid: true},
		{name: "valid mode with bad threshold", patch: SettingsPatch{Mode: mode(ModeDisabled), ConfidenceThreshold: ptr(1.5)}, invalid: true},
		{name: "blank model", patch: SettingsPatch{Model: str("  ")}, invalid: true},
		{name: "blank url", patch: SettingsPatch{BaseURL: str("/")}, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store := newTestEngine(&stubRules{}, nil)
			got, err := e.PatchSettings(context.Background(), tt.patch)

			if tt.invalid {
				if !errors.Is(err, ErrInvalidSettings) {
					t.Fatalf("Expected ErrInvalidSettings, got %v", err)
				}
				if e.Settings() != DefaultSettings() || store.SaveCount() != 0 {
					t.Error("Rejected patch must change nothing")
				}
				return
			}
			if err != nil {
				t.Fatalf("PatchSettings failed: %v", err)
			}
			if got != tt.want || e.Settings() != tt.want {
				t.Errorf("Settings = %+v, want %+v", got, tt.want)
			}
			if store.snap == nil || *store.snap.Settings != tt.want {
				t.Error("Expected settings persisted")
			}
		})
	}
}

func TestEngine_PatchSettingsSaveFailure(t *testing.T) {
	store := &memStore{err: &StoreError{Message: "disk full"}, failures: 1}
	e := NewEngine(&stubRules{}, nil, WithStore(store))
	m := ModeDisabled

	_, err := e.PatchSettings(context.Background(), SettingsPatch{Mode: &m})
	if err == nil || errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("Expected a store error, got %v", err)
	}
	if e.Settings().Mode != ModeAdaptive {
		t.Errorf("Expected previous mode kept, got %q", e.Settings().Mode)
	}
}

func TestEngine_RestoreCorruptState(t *testing.T) {
	store := &memStore{loadErr: &StoreError{
		Message: "decoding snapshot",
		Cause:   errors.Join(ErrCorruptState, errors.New("invalid character 'n'")),
	}}
	e := NewEngine(&stubRules{out: "int x = 5;"}, nil, WithStore(store), WithMode(ModeDisabled))
	ctx := context.Background()

	if err := e.Restore(ctx); err != nil {
		t.Fatalf("Expected unreadable state to be skipped, got %v", err)
	}
	if e.Stats().CurrentConfidence != InitialConfidence || e.PatternCount() != 0 {
		t.Error("Expected defaults after unreadable state")
	}

	// The engine keeps working and the next save replaces the bad blob
	if _, err := e.Convert(ctx, Request{Source: tsSource, From: TypeScript, To: Java}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if store.SaveCount() != 1 {
		t.Errorf("Expected 1 save, got %d", store.SaveCount())
	}
}

func TestEngine_RestoreLoadError(t *testing.T) {
	store := &memStore{loadErr: &StoreError{Message: "permission denied"}}
	e := NewEngine(&stubRules{}, nil, WithStore(store))

	err := e.Restore(context.Background())
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *StoreError for other load failures, got %v", err)
	}
}

func TestEngine_Reset(t *testing.T) {
	e, store := newTestEngine(&stubRules{out: "int x = 5;"}, &stubModel{response: "import java.util.*;\nx: int = 5;"})
	ctx := context.Background()

	if err := e.SetModel(ctx, "codellama:13b"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Convert(ctx, Request{Source: tsSource, From: TypeScript, To: Java}); err != nil {
		t.Fatal(err)
	}

	if err := e.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if s := e.Stats(); s.TotalConversions != 0 || s.CurrentConfidence != InitialConfidence {
		t.Errorf("Expected fresh stats, got %+v", s)
	}
	if e.PatternCount() != 0 || len(e.History(0)) != 0 {
		t.Error("Expected patterns and history cleared")
	}
	if store.snap == nil || store.snap.Settings == nil || store.snap.Settings.Model != "codellama:13b" {
		t.Errorf("Expected settings kept in the store, got %+v", store.snap)
	}
	if len(store.snap.Patterns) != 0 {
		t.Error("Expected persisted patterns cleared")
	}
}

func TestEngine_Settings(t *testing.T) {
	e, store := newTestEngine(&stubRules{}, nil)
	ctx := context.Background()

	if err := e.SetMode(ctx, "turbo"); err == nil {
		t.Error("Expected invalid mode error")
	}
	if err := e.SetConfidenceThreshold(ctx, 1.5); err == nil {
		t.Error("Expected out of range threshold error")
	}
	if _, err := e.UpdateSettings(ctx, Settings{ConfidenceThreshold: -0.1}); err == nil {
		t.Error("Expected out of range threshold error")
	}

	if err := e.SetMode(ctx, ModeAlwaysModel); err != nil {
		t.Fatal(err)
	}
	if err := e.SetConfidenceThreshold(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetBaseURL(ctx, "http://gpu:11434/"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetModel(ctx, " "); err == nil {
		t.Error("Expected empty model error")
	}

	got := e.Settings()
	want := Settings{Mode: ModeAlwaysModel, ConfidenceThreshold: 0, Model: DefaultModel, BaseURL: "http://gpu:11434"}
	if got != want {
		t.Errorf("Settings = %+v, want %+v", got, want)
	}
	if store.snap == nil || *store.snap.Settings != want {
		t.Errorf("Expected persisted settings, got %+v", store.snap)
	}

	updated, err := e.UpdateSettings(ctx, Settings{Mode: ModeAdaptive, ConfidenceThreshold: 0.6})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Mode != ModeAdaptive || updated.ConfidenceThreshold != 0.6 || updated.BaseURL != "http://gpu:11434" {
		t.Errorf("Unexpected merged settings %+v", updated)
	}
}

func TestEngine_SettingsTakeEffectOnNextRequest(t *testing.T) {
	model := &stubModel{response: "unused"}
	e, _ := newTestEngine(&stubRules{out: "int total = 5;"}, model)
	ctx := context.Background()

	if err := e.SetConfidenceThreshold(ctx, 0); err != nil {
		t.Fatal(err)
	}
	res, err := e.Convert(ctx, Request{Source: tsSource, From: TypeScript, To: Java})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceRules || model.CallCount() != 0 {
		t.Errorf("Threshold 0 should keep adaptive mode off the model, got %s", res.Source)
	}
}

func TestEngine_ExportImportPatterns(t *testing.T) {
	src, _ := newTestEngine(&stubRules{out: "int x = 5;"}, &stubModel{response: "import java.util.*;\nx: int = 5;"})
	ctx := context.Background()
	for _, code := range []string{"let a = 1;", "const b = 'x';"} {
		if _, err := src.Convert(ctx, Request{Source: code, From: TypeScript, To: Java}); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := src.ExportPatterns(&buf, map[string]string{"origin": "test"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst, store := newTestEngine(&stubRules{}, nil)
	res, err := dst.ImportPatterns(ctx, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Imported != 2 || res.Failed != 0 || res.Metadata["origin"] != "test" {
		t.Errorf("Unexpected import result %+v", res)
	}
	if dst.PatternCount() != 2 {
		t.Errorf("Expected 2 patterns, got %d", dst.PatternCount())
	}
	if store.snap == nil || len(store.snap.Patterns) != 2 {
		t.Error("Expected imported patterns persisted")
	}
}

func TestEngine_KeyNormalization(t *testing.T) {
	model := &stubModel{response: "completely different output"}
	e, _ := newTestEngine(&stubRules{}, model, WithKeyNormalization(NormalizeAggressive))
	ctx := context.Background()

	if _, err := e.Convert(ctx, Request{Source: "let alpha = 1;", From: TypeScript, To: Java}); err != nil {
		t.Fatal(err)
	}
	res, err := e.Convert(ctx, Request{Source: "let beta = 2;", From: TypeScript, To: Java})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceCache {
		t.Errorf("Aggressive keys should match renamed identifiers, got %s", res.Source)
	}
}
