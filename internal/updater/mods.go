package updater

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vs-updater/vs-updater/internal/install"
	"github.com/vs-updater/vs-updater/internal/manifest"
	"github.com/vs-updater/vs-updater/internal/modlisting"
	"github.com/vs-updater/vs-updater/internal/modrecord"
	"github.com/vs-updater/vs-updater/internal/quarantine"
	"github.com/vs-updater/vs-updater/internal/report"
)

// UpdateMods updates every mod folder in ModsDir in name order. A failing mod
// never stops the others; the returned error joins every mod failure.
func (u *Updater) UpdateMods(ctx context.Context) ([]report.Result, error) {
	entries, err := os.ReadDir(u.ModsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mods directory: %w", err)
	}
	sort.Slice(entries, func(i, k int) bool { return entries[i].Name() < entries[k].Name() })

	var results []report.Result
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("mod updates interrupted: %w", err))
			break
		}

		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), ".zip") {
			u.logger().Warn("Zipped mods cannot be updated, extract the mod to a folder first", "mod", name)
			res := result(report.KindMod, name, report.Skipped)
			res.Detail = "zipped mod"
			results = append(results, res)
			continue
		}
		if !entry.IsDir() {
			continue
		}

		modDir := filepath.Join(u.ModsDir, name)
		if _, err := os.Stat(filepath.Join(modDir, modrecord.RecordFile)); err != nil {
			u.logger().Warn("Mod has no "+modrecord.RecordFile+", skipping", "mod", name)
			res := result(report.KindMod, name, report.Skipped)
			res.Detail = "no " + modrecord.RecordFile
			results = append(results, res)
			continue
		}

		res, err := u.UpdateMod(ctx, modDir)
		if err != nil {
			u.logger().Error("Mod update failed", "mod", name, "err", err)
			errs = append(errs, err)
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// UpdateMod replaces one mod folder with the newest release listed for its
// mod id, then renames the folder after the new version.
func (u *Updater) UpdateMod(ctx context.Context, modDir string) (report.Result, error) {
	name := filepath.Base(modDir)
	res := result(report.KindMod, name, report.UpToDate)
	j := u.newJob(name, modDir)

	if err := j.q.CheckStale(u.Confirm); err != nil {
		err = j.fail(j.q.HoldingDir(), err)
		return failed(res, err), err
	}

	// read before quarantine, which may move the record when it is protected
	rec, err := modrecord.Load(modDir)
	if err != nil {
		err = j.fail(filepath.Join(modDir, modrecord.RecordFile), err)
		return failed(res, err), err
	}

	j.held = true
	if _, err := j.q.Quarantine(u.ModIgnore); err != nil {
		err = j.fail(modDir, err)
		return failed(res, err), err
	}
	j.advance(Quarantined)

	res.From = rec.DisplayedVersion
	if res.From == "" {
		res.From = rec.InstalledFileID
	}

	pageURL, err := joinURL(u.ModsURL, rec.ModID)
	if err != nil {
		err = j.fail(u.ModsURL, err)
		return failed(res, err), err
	}
	page, err := u.Transport.FetchText(ctx, pageURL)
	if err != nil {
		err = j.fail(pageURL, err)
		return failed(res, err), err
	}

	best, err := modlisting.Select(modlisting.ExtractReleases(page, j.logger), modlisting.Options{
		StableOnly: u.StableOnly,
		Logger:     j.logger,
	})
	if err != nil {
		err = j.fail(pageURL, err)
		return failed(res, err), err
	}

	if modlisting.IsCurrent(rec.InstalledFileID, best) {
		if err := j.finish(); err != nil {
			return failed(res, err), err
		}
		j.logger.Info("Mod is up to date", "file", best.FileName)
		return res, nil
	}
	j.advance(VersionResolved)
	j.logger.Info("Mod update available", "installed", rec.InstalledFileID, "latest", best.FileID, "file", best.FileName)

	downloadURL, err := joinURL(u.ModsURL, best.Link)
	if err != nil {
		err = j.fail(best.Link, err)
		return failed(res, err), err
	}

	j.wiping = true
	if err := install.Wipe(modDir, quarantine.HoldingName, modrecord.RecordFile); err != nil {
		err = j.fail(modDir, err)
		return failed(res, err), err
	}
	j.advance(Wiped)

	archivePath, err := u.Transport.FetchToFile(ctx, downloadURL, modDir)
	if err != nil {
		err = j.fail(downloadURL, err)
		return failed(res, err), err
	}
	j.advance(Downloaded)

	if err := u.ModExtractor.Extract(ctx, archivePath); err != nil {
		err = j.fail(archivePath, err)
		return failed(res, err), err
	}
	j.advance(Extracted)

	if err := j.q.Restore(); err != nil {
		err = j.fail(j.q.HoldingDir(), err)
		return failed(res, err), err
	}

	rec.InstalledFileID = strconv.FormatInt(best.FileID, 10)
	if err := modrecord.Save(modDir, rec); err != nil {
		err = j.fail(modDir, err)
		return failed(res, err), err
	}
	removeArchive(j.logger, archivePath)
	j.advance(Restored)

	res.Outcome = report.Updated
	res.To = strconv.FormatInt(best.FileID, 10)
	if modVersion, err := manifest.ReadVersion(modDir); err != nil {
		j.logger.Warn("Cannot read the mod version, keeping the folder name", "err", err)
	} else {
		res.To = modVersion
		if renamed, ok := renameMod(j, modDir, modVersion); ok {
			res.Detail = "renamed to " + filepath.Base(renamed)
		}
	}
	j.advance(Done)

	j.logger.Info("Mod updated", "from", res.From, "to", res.To)
	return res, nil
}

// renameMod moves modDir to <prefix>_<version>. Failures only warn: the mod
// is already updated.
func renameMod(j *job, modDir, modVersion string) (string, bool) {
	target, err := modrecord.VersionedPath(modDir, modVersion)
	if err != nil {
		j.logger.Warn("Cannot rename mod folder", "err", err)
		return "", false
	}
	if target == modDir {
		return "", false
	}
	if _, err := os.Stat(target); err == nil {
		j.logger.Warn("Cannot rename mod folder, the target exists", "target", target)
		return "", false
	}
	if err := os.Rename(modDir, target); err != nil {
		j.logger.Warn("Cannot rename mod folder", "target", target, "err", err)
		return "", false
	}
	return target, true
}

// joinURL resolves a mod id or a site-relative link against the mods site
func joinURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(b.Path, "/") {
		b.Path += "/"
	}
	r, err := url.Parse(strings.TrimPrefix(ref, "/"))
	if err != nil {
		return "", err
	}
	if r.Host != "" && r.Host != b.Host {
		return "", fmt.Errorf("link %s points away from %s", ref, b.Host)
	}
	return b.ResolveReference(r).String(), nil
}
