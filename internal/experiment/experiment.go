// Package experiment runs one named analysis from a configuration and
// returns its curves and summary values ready to print, plot or store.
package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/sdofsim/internal/config"
	"github.com/san-kum/sdofsim/internal/dynamo"
	"github.com/san-kum/sdofsim/internal/export"
	"github.com/san-kum/sdofsim/internal/logging"
	"github.com/san-kum/sdofsim/internal/physics"
	"github.com/san-kum/sdofsim/internal/srs"
	"github.com/san-kum/sdofsim/internal/storage"
)

type Kind string

const (
	FRF              Kind = "frf"
	Transmissibility Kind = "transmissibility"
	Time             Kind = "time"
	Integrate        Kind = "integrate"
	Compare          Kind = "compare"
	SRS              Kind = "srs"
	Pulse            Kind = "pulse"
)

// Options tune a run beyond what the configuration holds.
type Options struct {
	Logger logging.Logger
	// Integrators lists the schemes raced by Compare. Empty means all.
	Integrators []string
}

// Outcome is the product of one analysis.
type Outcome struct {
	Kind    Kind
	System  physics.System
	Table   *export.Table
	Params  map[string]string
	Summary map[string]float64

	// Result is the integrated history of Integrate.
	Result *dynamo.Result
	// Spectrum is the full SRS result of SRS.
	Spectrum *srs.Result
}

// Metadata describes the outcome for storage.
func (o *Outcome) Metadata() storage.RunMetadata {
	info := storage.SystemInfoOf(o.System)
	return storage.RunMetadata{
		Analysis: string(o.Kind),
		System:   &info,
		Params:   o.Params,
		Summary:  o.Summary,
	}
}

type runner func(ctx context.Context, cfg *config.Config, sys physics.System, opts Options) (*Outcome, error)

type Registry struct {
	runners map[Kind]runner
}

func NewRegistry() *Registry {
	r := &Registry{runners: make(map[Kind]runner)}

	r.runners[FRF] = runFRF
	r.runners[Transmissibility] = runTransmissibility
	r.runners[Time] = runTime
	r.runners[Integrate] = runIntegrate
	r.runners[Compare] = runCompare
	r.runners[SRS] = runSRS
	r.runners[Pulse] = runPulse

	return r
}

// Run validates the configuration and executes the named analysis.
func (r *Registry) Run(ctx context.Context, kind Kind, cfg *config.Config, opts Options) (*Outcome, error) {
	fn, ok := r.runners[kind]
	if !ok {
		return nil, fmt.Errorf("unknown analysis: %s", kind)
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		return nil, err
	}
	log := logging.OrGlobal(opts.Logger)
	log.Debug("running analysis", logging.Fields{"analysis": kind, "system": sys.String()})

	out, err := fn(ctx, cfg, sys, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	out.Kind = kind
	out.System = sys
	return out, nil
}

// ListKinds returns the analysis names in sorted order.
func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.runners))
	for k := range r.runners {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}
