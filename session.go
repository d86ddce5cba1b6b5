package codeshift

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ZaguanLabs/codeshift/i18n"
)

// DualResult is the outcome of converting one source into two targets.
type DualResult struct {
	From    Language
	Targets [2]Language
	Results [2]*Result
	Status  string // Overall status line
}

// Session is one requester's conversion pipeline. It allows a single
// request in flight; a second request arriving meanwhile is rejected with
// ErrBusy and has no effect.
type Session struct {
	id       string
	engine   *Engine
	inflight *semaphore.Weighted
	busy     atomic.Bool
	lastUsed atomic.Int64
	logger   logrus.FieldLogger
}

// NewSession creates a session over a shared engine.
func NewSession(id string, engine *Engine) *Session {
	s := &Session{
		id:       id,
		engine:   engine,
		inflight: semaphore.NewWeighted(1),
		logger:   engine.logger.WithField("session", id),
	}
	s.touch()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Busy reports whether a conversion is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// LastUsed returns when the session last accepted a request.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(s.engine.now().UnixNano())
}

// Convert translates source into both targets, one after the other.
//
// Input is validated before anything runs: empty source yields
// ErrEmptySource, a target equal to from yields ErrSameLanguage. A panic
// inside the pipeline is reported as ErrConversionFailed and the session
// stays usable.
func (s *Session) Convert(ctx context.Context, source string, from, target1, target2 Language) (res *DualResult, err error) {
	if !s.inflight.TryAcquire(1) {
		return nil, ErrBusy
	}
	s.busy.Store(true)
	s.touch()
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Conversion panicked")
			res, err = nil, fmt.Errorf("%w: %v", ErrConversionFailed, r)
		}
		s.busy.Store(false)
		s.inflight.Release(1)
	}()

	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}
	for _, lang := range []Language{from, target1, target2} {
		if !lang.Valid() {
			return nil, &UnsupportedLanguageError{Name: string(lang)}
		}
	}
	if target1 == from || target2 == from {
		return nil, ErrSameLanguage
	}

	res = &DualResult{
		From:    from,
		Targets: [2]Language{target1, target2},
	}
	for i, to := range res.Targets {
		r, err := s.engine.Convert(ctx, Request{Source: source, From: from, To: to})
		if err != nil {
			return nil, fmt.Errorf("%w: %s -> %s: %v", ErrConversionFailed, from, to, err)
		}
		res.Results[i] = r
	}
	res.Status = i18n.T(i18n.MsgConversionComplete)

	s.logger.WithFields(logrus.Fields{
		"from":    from,
		"target1": target1,
		"target2": target2,
		"source1": res.Results[0].Source,
		"source2": res.Results[1].Source,
	}).Info("Conversion completed")

	return res, nil
}
