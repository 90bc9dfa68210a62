package updater

import (
	"context"
	"fmt"
	"strings"

	"github.com/vs-updater/vs-updater/internal/install"
	"github.com/vs-updater/vs-updater/internal/probe"
	"github.com/vs-updater/vs-updater/internal/quarantine"
	"github.com/vs-updater/vs-updater/internal/report"
	"github.com/vs-updater/vs-updater/internal/transport"
	"github.com/vs-updater/vs-updater/internal/version"
)

// gameTarget is the release to install
type gameTarget struct {
	url     string
	version version.Version
	known   bool
}

// UpdateGame brings the installation in WorkDir to the newest release. The
// returned error is a *PhaseError; ErrNoVersionsFound is reported with the
// NotFound outcome.
func (u *Updater) UpdateGame(ctx context.Context) (report.Result, error) {
	res := result(report.KindGame, u.WorkDir, report.UpToDate)
	j := u.newJob("game", u.WorkDir)

	if err := j.q.CheckStale(u.Confirm); err != nil {
		err = j.fail(j.q.HoldingDir(), err)
		return failed(res, err), err
	}

	j.held = true
	if _, err := j.q.Quarantine(u.Ignore); err != nil {
		err = j.fail(u.WorkDir, err)
		return failed(res, err), err
	}
	j.advance(Quarantined)

	installed, err := version.ReadInstalled(u.WorkDir)
	if err != nil && u.ForceURL == "" {
		err = j.fail(u.WorkDir, err)
		return failed(res, err), err
	}
	if err == nil {
		res.From = installed.String()
	}

	target, err := u.resolveGame(ctx, installed)
	if err != nil {
		err = j.fail(u.BaseURL, err)
		return failed(res, err), err
	}

	if target.url == "" {
		if err := j.finish(); err != nil {
			return failed(res, err), err
		}
		j.logger.Error("No available versions found", "installed", installed)
		res.Outcome = report.NotFound
		res.Detail = ErrNoVersionsFound.Error()
		return res, &PhaseError{Target: j.target, State: Quarantined, Resource: u.BaseURL, Err: ErrNoVersionsFound}
	}

	if target.known {
		res.To = target.version.String()
	}
	if u.ForceURL == "" && target.version.Equal(installed) {
		if err := j.finish(); err != nil {
			return failed(res, err), err
		}
		j.logger.Info("Game is up to date", "version", installed)
		return res, nil
	}
	j.advance(VersionResolved)
	j.logger.Info("Update available", "from", res.From, "to", res.To, "url", target.url)

	if err := u.checkRunning(ctx); err != nil {
		err = j.fail(u.WorkDir, err)
		return failed(res, err), err
	}

	if u.Countdown != nil && u.CountdownSeconds > 0 {
		if err := u.Countdown(ctx, u.CountdownSeconds); err != nil {
			err = j.fail(u.WorkDir, fmt.Errorf("update cancelled: %w", err))
			return failed(res, err), err
		}
	}

	j.wiping = true
	if err := install.Wipe(u.WorkDir, quarantine.HoldingName); err != nil {
		err = j.fail(u.WorkDir, err)
		return failed(res, err), err
	}
	j.advance(Wiped)

	archivePath, err := u.Transport.FetchToFile(ctx, target.url, u.WorkDir)
	if err != nil {
		err = j.fail(target.url, err)
		return failed(res, err), err
	}
	j.advance(Downloaded)

	if err := u.GameExtractor.Extract(ctx, archivePath); err != nil {
		err = j.fail(archivePath, err)
		return failed(res, err), err
	}
	j.advance(Extracted)

	if err := j.q.Restore(); err != nil {
		err = j.fail(j.q.HoldingDir(), err)
		return failed(res, err), err
	}
	removeArchive(j.logger, archivePath)
	j.advance(Restored)

	u.verifyMarker(j, target)
	j.advance(Done)

	res.Outcome = report.Updated
	j.logger.Info("Game updated", "from", res.From, "to", res.To)
	return res, nil
}

// resolveGame picks the archive to install. An empty url means no release
// exists, not even the installed one.
func (u *Updater) resolveGame(ctx context.Context, installed version.Version) (gameTarget, error) {
	if u.ForceURL != "" {
		t := gameTarget{url: u.ForceURL}
		name, err := transport.FileName(u.ForceURL)
		if err != nil {
			return t, err
		}
		if v, err := u.Artifact.VersionFromFileName(name); err == nil {
			t.version, t.known = v, true
		} else {
			u.logger().Warn("Cannot tell the version of the forced archive", "file", name)
		}
		return t, nil
	}

	prober := &probe.Prober{
		Probe: func(ctx context.Context, v version.Version) bool {
			return u.Transport.Exists(ctx, u.Artifact.URL(u.BaseURL, v))
		},
		MaxProbes: u.MaxProbes,
		Logger:    u.logger(),
	}
	found, err := prober.Find(ctx, installed)
	if err != nil {
		return gameTarget{}, err
	}
	u.logger().Debug("Probing finished", "probes", len(found.Probed), "latest", found.Latest)
	if !found.Found() {
		return gameTarget{}, nil
	}
	return gameTarget{
		url:     u.Artifact.URL(u.BaseURL, found.Latest),
		version: found.Latest,
		known:   true,
	}, nil
}

func (u *Updater) checkRunning(ctx context.Context) error {
	if !u.CheckRunning || u.Running == nil {
		return nil
	}
	matches, err := u.Running(ctx, u.WorkDir)
	if err != nil {
		u.logger().Warn("Cannot check for running programs", "err", err)
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.String()
	}
	return fmt.Errorf("%w: %s", ErrProcessRunning, strings.Join(names, ", "))
}

// verifyMarker warns when the extracted release does not carry the expected
// version marker
func (u *Updater) verifyMarker(j *job, target gameTarget) {
	got, err := version.ReadInstalled(u.WorkDir)
	if err != nil {
		j.logger.Warn("Cannot read the installed version after the update", "err", err)
		return
	}
	if target.known && !got.Equal(target.version) {
		j.logger.Warn("Installed version differs from the downloaded release",
			"expected", version.MarkerPath(u.WorkDir, target.version), "found", got)
	}
}
