// Package aiteam provides a high-level façade over the workforce, handoff,
// runtime, and session packages for running a tenant's AI team end to end.
// Most applications interact with this package by:
//  1. Creating a Team via New() with a company dataset and a runtime
//  2. Starting runs with RunStream (streaming events) or Run (final result)
//
// All defaults are safe for local development: artifacts land under ./tmp,
// logging is silent, and the revision and turn ceilings use the library
// defaults. Production deployments supply a configured artifact store and a
// structured logger.
package aiteam

import (
	"context"

	"github.com/onlyoneaman/ai-team/artifact"
	"github.com/onlyoneaman/ai-team/config"
	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/logging"
	"github.com/onlyoneaman/ai-team/runtime"
	"github.com/onlyoneaman/ai-team/session"
	"github.com/onlyoneaman/ai-team/workforce"
)

// Options configures a Team.
type Options struct {
	// Store receives run artifacts. Defaults to an in-memory store.
	Store artifact.Store
	// Logger defaults to a no-op logger.
	Logger logging.Logger
	// MaxTurns bounds the agent loop per run; <= 0 uses the runtime default.
	MaxTurns int
	// MaxIterations bounds the revision loop per run; <= 0 uses the task
	// default.
	MaxIterations int
	// ModelName selects the pricing row for cost estimates.
	ModelName string
}

// Team is the high-level façade bundling a built workforce with the runtime
// and per-run session plumbing.
type Team struct {
	wf   *workforce.Workforce
	rt   runtime.Runtime
	opts Options
}

// New builds the default workforce for the company dataset and wires it to
// the given runtime.
func New(data *config.CompanyData, rt runtime.Runtime, optFns ...func(o *Options)) (*Team, error) {
	opts := Options{
		Store:  artifact.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	wf, err := workforce.Build(data)
	if err != nil {
		return nil, err
	}
	return &Team{wf: wf, rt: rt, opts: opts}, nil
}

// Workforce exposes the validated role hierarchy.
func (t *Team) Workforce() *workforce.Workforce { return t.wf }

// NewSession creates a fresh single-use session for one run.
func (t *Team) NewSession() *session.Session {
	return session.New(t.rt, t.wf, func(o *session.Options) {
		o.Store = t.opts.Store
		o.Logger = t.opts.Logger
		o.MaxTurns = t.opts.MaxTurns
		o.MaxIterations = t.opts.MaxIterations
		o.ModelName = t.opts.ModelName
	})
}

// RunStream starts a run and returns its event stream along with the session
// for post-run inspection.
func (t *Team) RunStream(ctx context.Context, message string) (*session.Session, <-chan core.Event) {
	s := t.NewSession()
	return s, s.RunStream(ctx, message)
}

// Run executes a run to completion and returns the final result.
func (t *Team) Run(ctx context.Context, message string) (*session.Result, error) {
	return t.NewSession().Run(ctx, message)
}
