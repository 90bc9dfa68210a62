// Package updater runs the replace protocol for the game installation and
// for every managed mod folder.
package updater

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vs-updater/vs-updater/internal/archive"
	"github.com/vs-updater/vs-updater/internal/platform"
	"github.com/vs-updater/vs-updater/internal/process"
	"github.com/vs-updater/vs-updater/internal/quarantine"
	"github.com/vs-updater/vs-updater/internal/report"
	"github.com/vs-updater/vs-updater/internal/transport"
)

// Options configure a run
type Options struct {
	// WorkDir is the game installation directory
	WorkDir string
	// Ignore lists the protected top-level entries of WorkDir
	Ignore   []string
	Artifact platform.Artifact
	BaseURL  string
	// ForceURL replaces the installation from this archive without probing
	ForceURL  string
	MaxProbes int
	// CountdownSeconds is the pause before the game wipe
	CountdownSeconds int
	CheckRunning     bool
	SkipGame         bool

	// ModsDir holds one folder per mod; empty skips the mods phase
	ModsDir string
	ModsURL string
	// ModIgnore lists the protected entries of every mod folder
	ModIgnore  []string
	StableOnly bool
	SkipMods   bool
}

// Updater updates the game and its mods
type Updater struct {
	Options

	Transport     transport.Transport
	GameExtractor archive.Extractor
	ModExtractor  archive.Extractor

	// Confirm is asked before a leftover holding directory is deleted
	Confirm func(path string) bool
	// Countdown pauses before the game wipe; a returned error aborts safely
	Countdown func(ctx context.Context, seconds int) error
	// Running lists programs executing from a directory
	Running func(ctx context.Context, dir string) ([]process.Match, error)

	Logger *log.Logger
}

// New creates an Updater with the default extractors and process check
func New(opts Options, t transport.Transport, logger *log.Logger) *Updater {
	return &Updater{
		Options:       opts,
		Transport:     t,
		GameExtractor: archive.New(logger, opts.Artifact.Roots...),
		ModExtractor:  archive.New(logger),
		Running:       process.RunningInDir,
		Logger:        logger,
	}
}

// Run updates the game, then every mod, adding each outcome to rep. A game
// failure stops the run before the mods phase, except when no release was
// found: the installation is untouched then and the mods are still updated.
// Mod failures are collected and joined.
func (u *Updater) Run(ctx context.Context, rep *report.Report) error {
	var gameErr error
	if !u.SkipGame {
		res, err := u.UpdateGame(ctx)
		rep.Add(res)
		if err != nil && !errors.Is(err, ErrNoVersionsFound) {
			return err
		}
		gameErr = err
	}

	if u.SkipMods {
		return gameErr
	}
	if u.ModsDir == "" {
		u.logger().Debug("No mods path configured, skipping mods")
		return gameErr
	}

	results, err := u.UpdateMods(ctx)
	for _, res := range results {
		rep.Add(res)
	}
	return errors.Join(gameErr, err)
}

func (u *Updater) logger() *log.Logger {
	if u.Logger == nil {
		return log.Default()
	}
	return u.Logger
}

// job tracks one target through the protocol
type job struct {
	target string
	state  State
	// held is set once entries may have been moved to the holding directory
	held   bool
	wiping bool
	q      *quarantine.Manager
	logger *log.Logger
}

func (u *Updater) newJob(target, dir string) *job {
	return &job{
		target: target,
		state:  Idle,
		q:      quarantine.New(dir, u.logger()),
		logger: u.logger().With("target", target),
	}
}

func (j *job) advance(s State) {
	j.logger.Debug("State transition", "from", j.state, "to", s)
	j.state = s
}

// fail aborts the job. Quarantined entries are moved back whenever they may
// have been moved, before or after the wipe.
func (j *job) fail(resource string, err error) error {
	pe := &PhaseError{
		Target:   j.target,
		State:    j.state,
		Resource: resource,
		Unsafe:   j.wiping,
		Err:      err,
	}

	if j.held {
		if rerr := j.q.Restore(); rerr != nil {
			j.logHeld()
			pe.HoldingDir = j.q.HoldingDir()
			pe.Err = errors.Join(err, fmt.Errorf("restore failed: %w", rerr))
			// entries stuck in the holding directory need manual recovery too
			pe.Unsafe = true
		}
	}

	j.advance(Aborted)
	return pe
}

// finish moves the quarantined entries back for a run that ends without
// touching the target
func (j *job) finish() error {
	if err := j.q.Restore(); err != nil {
		j.logHeld()
		pe := &PhaseError{
			Target:     j.target,
			State:      j.state,
			Resource:   j.q.HoldingDir(),
			Unsafe:     true,
			HoldingDir: j.q.HoldingDir(),
			Err:        fmt.Errorf("restore failed: %w", err),
		}
		j.advance(Aborted)
		return pe
	}
	j.advance(Done)
	return nil
}

func (j *job) logHeld() {
	held, err := j.q.Held()
	if err != nil || len(held) == 0 {
		return
	}
	j.logger.Error("Protected entries remain in the holding directory", "path", j.q.HoldingDir(), "entries", held)
}

func result(kind, target string, outcome report.Outcome) report.Result {
	return report.Result{Kind: kind, Target: target, Outcome: outcome}
}

func failed(res report.Result, err error) report.Result {
	res.Outcome = report.Failed
	res.Detail = err.Error()
	res.Unsafe = IsUnsafe(err)
	return res
}

func removeArchive(logger *log.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove downloaded archive", "path", path, "err", err)
	}
}
