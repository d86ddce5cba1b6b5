package codeshift

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/codeshift/cache"
	"github.com/ZaguanLabs/codeshift/i18n"
)

// RuleTranslator is the deterministic, offline translator.
// Translate must be total: it always returns text, never an error.
type RuleTranslator interface {
	Translate(code string, from, to Language) string
}

// ModelTranslator is the interface for LLM translation backends.
type ModelTranslator interface {
	TranslateCode(ctx context.Context, req ModelRequest) (string, error)
}

// ModelLister is implemented by backends that can report installed models.
type ModelLister interface {
	ListModels(ctx context.Context, baseURL string) ([]ModelInfo, error)
	Ping(ctx context.Context, baseURL string) error
}

// ModelRequest contains the parameters for a model translation request.
type ModelRequest struct {
	Code    string
	From    Language
	To      Language
	Model   string // Model name, e.g. "llama3.2:latest"
	BaseURL string // Endpoint base URL, e.g. "http://localhost:11434"
}

// PatternCache is the interface for the learned pattern cache.
type PatternCache = cache.PatternCache

// StateStore persists engine snapshots.
// Load returns (nil, nil) when nothing has been saved yet.
type StateStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Clear(ctx context.Context) error
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithCache sets the pattern cache. Defaults to an in-memory cache.
func WithCache(c PatternCache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithStore sets the state store. Without a store nothing is persisted.
func WithStore(s StateStore) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithSettings sets the initial settings.
func WithSettings(s Settings) EngineOption {
	return func(e *Engine) {
		e.settings = mergeSettings(e.settings, s)
	}
}

// WithMode sets the initial operation mode.
func WithMode(m Mode) EngineOption {
	return func(e *Engine) {
		if m.Valid() {
			e.settings.Mode = m
		}
	}
}

// WithConfidenceThreshold sets the initial confidence threshold.
func WithConfidenceThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		if validThreshold(threshold) {
			e.settings.ConfidenceThreshold = threshold
		}
	}
}

// WithSimilarityThreshold overrides the reconciliation threshold. The rule
// result wins only when similarity is strictly greater than this value.
func WithSimilarityThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		if validThreshold(threshold) {
			e.similarityThreshold = threshold
		}
	}
}

// WithKeyNormalization sets how aggressively pattern keys are normalized.
func WithKeyNormalization(level KeyNormalization) EngineOption {
	return func(e *Engine) {
		e.keyNormalization = level
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine is the adaptive conversion policy engine.
//
// All mutable state (pattern cache, statistics, history, settings) is owned
// by the Engine and guarded by its mutex. The mutex is held for the
// synchronous phases of a conversion and released across the model call.
type Engine struct {
	mu sync.Mutex

	rules      RuleTranslator
	model      ModelTranslator
	cache      PatternCache
	store      StateStore
	confidence *ConfidenceTracker
	history    *History
	settings   Settings

	similarityThreshold float64
	keyNormalization    KeyNormalization
	logger              logrus.FieldLogger
	now                 func() time.Time
}

// NewEngine creates a new Engine with the given rule translator and model backend.
// model may be nil, in which case every model call is treated as unavailable.
func NewEngine(rules RuleTranslator, model ModelTranslator, opts ...EngineOption) *Engine {
	e := &Engine{
		rules:               rules,
		model:               model,
		confidence:          NewConfidenceTracker(),
		history:             NewHistory(),
		settings:            DefaultSettings(),
		similarityThreshold: DefaultSimilarityThreshold,
		keyNormalization:    NormalizeLiterals,
		now:                 time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cache == nil {
		e.cache = cache.NewInMemoryCache()
	}
	if e.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.logger = l
	}

	return e
}

// Convert runs one request through the policy engine.
//
// Every path that passes input validation returns usable text: model
// failures fall back to the rule result and are reported through
// Result.Source, never as an error.
func (e *Engine) Convert(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, ErrEmptySource
	}
	if !req.From.Valid() {
		return nil, &UnsupportedLanguageError{Name: string(req.From)}
	}
	if !req.To.Valid() {
		return nil, &UnsupportedLanguageError{Name: string(req.To)}
	}

	if req.From == req.To {
		return &Result{
			Content:    req.Source,
			Status:     i18n.T(i18n.MsgSameLanguage),
			Source:     SourceIdentity,
			Similarity: 1,
			Confidence: e.Stats().CurrentConfidence,
		}, nil
	}

	result, p := e.begin(ctx, req)
	if result != nil {
		return result, nil
	}

	p.log.Debug("Invoking model")
	modelResult, err := e.callModel(ctx, req, p.settings)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		p.log.WithError(err).Warn("Model unavailable, using rule result")
		e.confidence.RecordOutcome(true)
		e.learn(p.log, p.key, p.ruleResult)
		e.persistLocked(ctx)
		return &Result{
			Content:    p.ruleResult,
			Status:     i18n.T(i18n.MsgFallback),
			Source:     SourceFallback,
			Key:        p.key,
			Confidence: e.confidence.Confidence(),
		}, nil
	}

	result = e.reconcile(p.log, req, p.key, p.ruleResult, modelResult)
	e.persistLocked(ctx)
	return result, nil
}

// pending carries a conversion across the unlocked model call.
type pending struct {
	settings   Settings
	key        string
	ruleResult string
	log        logrus.FieldLogger
}

// begin runs the synchronous phase before the model call under the lock.
// It returns either a final result or the state needed to call the model.
func (e *Engine) begin(ctx context.Context, req Request) (*Result, *pending) {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings := e.settings

	// Manual-only bypasses learning entirely
	if settings.Mode == ModeManualOnly {
		return &Result{
			Content:    e.rules.Translate(req.Source, req.From, req.To),
			Status:     i18n.T(i18n.MsgManualOnly),
			Source:     SourceRules,
			Confidence: e.confidence.Confidence(),
		}, nil
	}

	key := PatternKey(req.Source, req.From, req.To, e.keyNormalization)
	log := e.logger.WithFields(logrus.Fields{
		"key":  key,
		"from": req.From,
		"to":   req.To,
	})

	if cached, ok := e.cache.Get(key); ok {
		log.WithField("source", SourceCache).Debug("Pattern cache hit")
		return &Result{
			Content:    cached,
			Status:     i18n.T(i18n.MsgLearnedPattern),
			Source:     SourceCache,
			Key:        key,
			Confidence: e.confidence.Confidence(),
		}, nil
	}

	ruleResult := e.rules.Translate(req.Source, req.From, req.To)

	if !e.shouldUseModel(settings) {
		e.confidence.RecordOutcome(true)
		e.persistLocked(ctx)
		log.WithField("source", SourceRules).Debug("Trusting rule result")
		return &Result{
			Content:    ruleResult,
			Status:     i18n.T(i18n.MsgHighConfidence),
			Source:     SourceRules,
			Key:        key,
			Confidence: e.confidence.Confidence(),
		}, nil
	}

	return nil, &pending{settings: settings, key: key, ruleResult: ruleResult, log: log}
}

// shouldUseModel decides whether the model is consulted after a cache miss.
func (e *Engine) shouldUseModel(s Settings) bool {
	switch s.Mode {
	case ModeAlwaysModel:
		return true
	case ModeAdaptive:
		return e.confidence.Confidence() < s.ConfidenceThreshold
	default:
		return false
	}
}

// callModel performs the model round trip. It must be called without the lock held.
func (e *Engine) callModel(ctx context.Context, req Request, s Settings) (string, error) {
	if e.model == nil {
		return "", &ModelUnavailableError{Message: "no model backend configured"}
	}

	out, err := e.model.TranslateCode(ctx, ModelRequest{
		Code:    req.Source,
		From:    req.From,
		To:      req.To,
		Model:   s.Model,
		BaseURL: s.BaseURL,
	})
	if err != nil {
		return "", err
	}
	if err := ValidateOutput(out, req.To); err != nil {
		return "", err
	}
	return out, nil
}

// reconcile compares rule and model results and learns the winner.
func (e *Engine) reconcile(log logrus.FieldLogger, req Request, key, ruleResult, modelResult string) *Result {
	similarity := Similarity(ruleResult, modelResult)
	log = log.WithField("similarity", similarity)

	if similarity > e.similarityThreshold {
		e.confidence.RecordOutcome(true)
		e.learn(log, key, ruleResult)
		log.WithField("source", SourceRulesVerified).Debug("Model confirmed rule result")
		return &Result{
			Content:    ruleResult,
			Status:     i18n.T(i18n.MsgRuleVerified),
			Source:     SourceRulesVerified,
			Key:        key,
			Similarity: similarity,
			Confidence: e.confidence.Confidence(),
		}
	}

	e.confidence.RecordOutcome(false)
	e.learn(log, key, modelResult)

	diffs := FindDifferences(ruleResult, modelResult)
	if len(diffs) > 0 {
		e.history.Append(HistoryEntry{
			ID:          uuid.NewString(),
			Key:         key,
			Source:      req.Source,
			From:        req.From,
			To:          req.To,
			RuleResult:  ruleResult,
			ModelResult: modelResult,
			Differences: diffs,
			Timestamp:   e.now().UTC(),
		})
	}

	log.WithFields(logrus.Fields{
		"source":      SourceModel,
		"differences": len(diffs),
	}).Debug("Model corrected rule result")

	return &Result{
		Content:     modelResult,
		Status:      i18n.T(i18n.MsgModelCorrection),
		Source:      SourceModel,
		Key:         key,
		Similarity:  similarity,
		Confidence:  e.confidence.Confidence(),
		Differences: diffs,
	}
}

// learn writes a pattern. Cache failures are logged and otherwise ignored.
func (e *Engine) learn(log logrus.FieldLogger, key, value string) {
	if err := e.cache.Set(key, value); err != nil {
		log.WithError(&CacheError{Message: "storing pattern", Cause: err}).Warn("Failed to learn pattern")
	}
}

// snapshotLocked builds the persisted view of the engine state.
func (e *Engine) snapshotLocked() *Snapshot {
	stats := e.confidence.Snapshot()
	settings := e.settings

	entries, err := e.cache.Entries()
	if err != nil {
		e.logger.WithError(err).Warn("Failed to read pattern cache for snapshot")
	}
	patterns := make([][2]string, 0, len(entries))
	for k, v := range entries {
		patterns = append(patterns, [2]string{k, v})
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i][0] < patterns[j][0] })

	return &Snapshot{
		Stats:    &stats,
		Patterns: patterns,
		History:  e.history.Recent(PersistedHistoryEntries),
		Settings: &settings,
	}
}

// persistLocked saves the current snapshot. Failures are logged, never returned,
// so a broken store cannot fail a conversion.
func (e *Engine) persistLocked(ctx context.Context) {
	if e.store == nil {
		return
	}
	// The request context may already be past its deadline after a model timeout
	if err := e.store.Save(context.WithoutCancel(ctx), e.snapshotLocked()); err != nil {
		e.logger.WithError(err).Warn("Failed to persist state")
	}
}

// Snapshot returns the current persisted view of the engine state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Restore loads persisted state from the store, merged over defaults.
// A missing or undecodable snapshot leaves the engine at its defaults; the
// next save replaces an undecodable one.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	snap, err := e.store.Load(ctx)
	if errors.Is(err, ErrCorruptState) {
		e.logger.WithError(err).Warn("Persisted state is unreadable, starting from defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	if snap == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if snap.Stats != nil {
		e.confidence.Restore(*snap.Stats)
	}
	for _, p := range snap.Patterns {
		if p[0] == "" {
			continue
		}
		if err := e.cache.Set(p[0], p[1]); err != nil {
			return &CacheError{Message: "restoring patterns", Cause: err}
		}
	}
	e.history.Restore(snap.History)
	if snap.Settings != nil {
		e.settings = restoreSettings(e.settings, *snap.Settings)
	}

	e.logger.WithFields(logrus.Fields{
		"patterns":    len(snap.Patterns),
		"history":     len(snap.History),
		"conversions": e.confidence.Snapshot().TotalConversions,
	}).Info("Restored state")

	return nil
}

// Reset wipes statistics, learned patterns and history. Settings are kept.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.confidence.Reset()
	e.history.Clear()
	if err := e.cache.Clear(); err != nil {
		return &CacheError{Message: "clearing patterns", Cause: err}
	}

	if e.store != nil {
		if err := e.store.Clear(ctx); err != nil {
			return fmt.Errorf("clearing state: %w", err)
		}
		// Keep settings across restarts
		if err := e.store.Save(ctx, e.snapshotLocked()); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
	}

	e.logger.Info("Learning data reset")
	return nil
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings validates and applies new settings, then persists them.
// Zero-valued fields keep their current value. Takes effect on the next request.
func (e *Engine) UpdateSettings(ctx context.Context, s Settings) (Settings, error) {
	if s.Mode != "" && !s.Mode.Valid() {
		return Settings{}, fmt.Errorf("invalid mode %q", s.Mode)
	}
	if s.ConfidenceThreshold != 0 && !validThreshold(s.ConfidenceThreshold) {
		return Settings{}, fmt.Errorf("confidence threshold %v out of range [0, 1]", s.ConfidenceThreshold)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings = mergeSettings(e.settings, s)
	if e.store != nil {
		if err := e.store.Save(ctx, e.snapshotLocked()); err != nil {
			return e.settings, fmt.Errorf("saving settings: %w", err)
		}
	}
	return e.settings, nil
}

// PatchSettings validates every field of p before applying any of them, then
// persists the result. When the save fails the previous settings are kept.
// Validation failures match ErrInvalidSettings.
func (e *Engine) PatchSettings(ctx context.Context, p SettingsPatch) (Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := p.apply(e.settings)
	if err != nil {
		return e.settings, err
	}

	prev := e.settings
	e.settings = next
	if e.store != nil {
		if err := e.store.Save(ctx, e.snapshotLocked()); err != nil {
			e.settings = prev
			return prev, fmt.Errorf("saving settings: %w", err)
		}
	}
	return next, nil
}

func (p SettingsPatch) apply(s Settings) (Settings, error) {
	if p.Mode != nil {
		if !p.Mode.Valid() {
			return s, fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, *p.Mode)
		}
		s.Mode = *p.Mode
	}
	if p.ConfidenceThreshold != nil {
		if !validThreshold(*p.ConfidenceThreshold) {
			return s, fmt.Errorf("%w: confidence threshold %v out of range [0, 1]", ErrInvalidSettings, *p.ConfidenceThreshold)
		}
		s.ConfidenceThreshold = *p.ConfidenceThreshold
	}
	if p.Model != nil {
		model := strings.TrimSpace(*p.Model)
		if model == "" {
			return s, fmt.Errorf("%w: model name is empty", ErrInvalidSettings)
		}
		s.Model = model
	}
	if p.BaseURL != nil {
		url := strings.TrimRight(strings.TrimSpace(*p.BaseURL), "/")
		if url == "" {
			return s, fmt.Errorf("%w: base URL is empty", ErrInvalidSettings)
		}
		s.BaseURL = url
	}
	return s, nil
}

// SetMode changes the operation mode.
func (e *Engine) SetMode(ctx context.Context, m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid mode %q", m)
	}
	_, err := e.UpdateSettings(ctx, Settings{Mode: m})
	return err
}

// SetConfidenceThreshold changes the confidence threshold. A threshold of 0
// is accepted and disables model calls in adaptive mode.
func (e *Engine) SetConfidenceThreshold(ctx context.Context, threshold float64) error {
	if !validThreshold(threshold) {
		return fmt.Errorf("confidence threshold %v out of range [0, 1]", threshold)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.ConfidenceThreshold = threshold
	if e.store != nil {
		if err := e.store.Save(ctx, e.snapshotLocked()); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
	}
	return nil
}

// SetModel changes the model name used for model calls.
func (e *Engine) SetModel(ctx context.Context, model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("model name is empty")
	}
	_, err := e.UpdateSettings(ctx, Settings{Model: model})
	return err
}

// SetBaseURL changes the model endpoint URL.
func (e *Engine) SetBaseURL(ctx context.Context, baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return fmt.Errorf("base URL is empty")
	}
	_, err := e.UpdateSettings(ctx, Settings{BaseURL: strings.TrimRight(baseURL, "/")})
	return err
}

// Stats returns a copy of the current statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confidence.Snapshot()
}

// PatternCount returns the number of learned patterns.
func (e *Engine) PatternCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Len()
}

// History returns up to n of the most recent history entries (all when n <= 0).
func (e *Engine) History(n int) []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Recent(n)
}

// ExportPatterns writes the learned patterns in the cache export format.
func (e *Engine) ExportPatterns(w io.Writer, metadata map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cache.NewExporter(e.cache).Export(w, metadata)
}

// ImportPatterns loads patterns from the cache export format and persists them.
func (e *Engine) ImportPatterns(ctx context.Context, r io.Reader) (*cache.ImportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := cache.NewImporter(e.cache).Import(r)
	if err != nil {
		return nil, err
	}
	e.persistLocked(ctx)
	return res, nil
}

func validThreshold(v float64) bool {
	return v >= 0 && v <= 1
}

// mergeSettings overlays the non-zero, valid fields of s onto base.
func mergeSettings(base, s Settings) Settings {
	if s.Mode.Valid() {
		base.Mode = s.Mode
	}
	if s.ConfidenceThreshold > 0 && s.ConfidenceThreshold <= 1 {
		base.ConfidenceThreshold = s.ConfidenceThreshold
	}
	if s.Model != "" {
		base.Model = s.Model
	}
	if s.BaseURL != "" {
		base.BaseURL = s.BaseURL
	}
	return base
}

// restoreSettings is mergeSettings for persisted settings, where a zero
// threshold was set deliberately rather than left out.
func restoreSettings(base, s Settings) Settings {
	merged := mergeSettings(base, s)
	if s.Mode.Valid() && s.ConfidenceThreshold == 0 {
		merged.ConfidenceThreshold = 0
	}
	return merged
}
