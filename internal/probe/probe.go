// Package probe finds the newest remotely available game version by walking
// forward from the installed version and asking whether each candidate exists.
//
// The remote repository has no index, so the only oracle is "does the artifact
// for this exact version exist". The walk never moves backwards: it climbs
// patch versions while they exist, then tries the next minor series, then the
// next major series, and stops once both have moved past the baseline without
// a hit.
package probe

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vs-updater/vs-updater/internal/version"
)

// Func reports whether the given version exists remotely
type Func func(ctx context.Context, v version.Version) bool

// Step is the pure transition of the probing walk. Given the baseline, the
// version just probed and whether it was found, it returns the next version
// to probe, or done=true when the walk is over.
func Step(baseline, current version.Version, found bool) (next version.Version, done bool) {
	next = current
	if found {
		next.IncrementPatch()
		return next, false
	}

	if current.Minor != baseline.Minor {
		if current.Major != baseline.Major {
			return current, true
		}
		next.IncrementMajor()
		return next, false
	}

	next.IncrementMinor()
	return next, false
}

// Result holds the outcome of a probing walk
type Result struct {
	// Latest is the highest version found, or version.Zero if none
	Latest version.Version
	// Probed lists every version checked, in order
	Probed []version.Version
}

// Found reports whether any version was found
func (r Result) Found() bool {
	return !r.Latest.IsZero()
}

// Prober runs the probing walk against a probe function
type Prober struct {
	Probe Func
	// MaxProbes bounds the number of probes; 0 means unbounded
	MaxProbes int
	Logger    *log.Logger
}

// Find walks forward from baseline and returns the highest existing version
func (p *Prober) Find(ctx context.Context, baseline version.Version) (Result, error) {
	var res Result
	current := baseline

	for {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("version probing interrupted: %w", err)
		}
		if p.MaxProbes > 0 && len(res.Probed) >= p.MaxProbes {
			return res, fmt.Errorf("version probing stopped after %d probes (last best %s)", p.MaxProbes, res.Latest)
		}

		found := p.Probe(ctx, current)
		res.Probed = append(res.Probed, current)
		if found {
			res.Latest = current
			p.debug("Version available", "version", current)
		} else {
			p.debug("Version not found", "version", current)
		}

		next, done := Step(baseline, current, found)
		if done {
			return res, nil
		}
		current = next
	}
}

func (p *Prober) debug(msg string, keyvals ...interface{}) {
	if p.Logger != nil {
		p.Logger.Debug(msg, keyvals...)
	}
}
