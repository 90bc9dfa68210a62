package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vs-updater/vs-updater/internal/audio"
	"github.com/vs-updater/vs-updater/internal/config"
	"github.com/vs-updater/vs-updater/internal/console"
	"github.com/vs-updater/vs-updater/internal/install"
	"github.com/vs-updater/vs-updater/internal/prompt"
	"github.com/vs-updater/vs-updater/internal/report"
	"github.com/vs-updater/vs-updater/internal/transport"
	"github.com/vs-updater/vs-updater/internal/updater"
)

// Version is set via -ldflags
var Version = "dev"

const title = "Vintage Story Updater"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nOops, something broke: %v\n", r)
			fmt.Fprintln(os.Stderr, "Files in the holding directory (.temp) may need to be moved back by hand.")
			os.Exit(ExitFailure)
		}
	}()

	os.Exit(execute(context.Background(), os.Args[1:]))
}

func execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	err := fang.Execute(ctx, cmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "vs-updater",
		Short: "Update a Vintage Story installation and its mods",
		Long: `vs-updater finds the newest Vintage Story release on the CDN and replaces the
installation with it, keeping the folders and files you choose to ignore.
It then updates every mod folder that carries a modid.txt record.

Settings come from flags, VS_UPDATER_* environment variables or a
vs-updater.{yaml,toml,json} file next to the executable.`,
		Example: `  vs-updater --working-path /srv/vintagestory --ignore-folders data,Mods
  vs-updater --skip-game --mods-path ~/.config/VintagestoryData/Mods --stable-only
  VINTAGE_STORY=/srv/vintagestory vs-updater --countdown 0 --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), cmd.Flags(), configFile)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default: vs-updater.{yaml,toml,json} next to the executable)")

	return cmd
}

func runUpdate(ctx context.Context, fs *pflag.FlagSet, configFile string) error {
	cfg, err := config.Load(viper.New(), fs, configFile)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	logger := console.New(console.Options{Verbose: cfg.Verbose, Quiet: cfg.Quiet, NoColor: cfg.NoColor})
	if cfg.NoColor {
		console.DisableColor()
	}
	if err := console.SetTitle(title); err != nil {
		logger.Debug("Could not set the console title", "err", err)
	}
	if cfg.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.ConfigFile)
	}

	sound := audio.New(!cfg.NoSound && !cfg.Quiet, logger)
	p := prompt.New(cfg.Yes)
	p.Sound = sound
	p.GetConsoleWindow = console.GetWindow

	if cfg.SelectPath {
		// launched from a file manager: keep the window open at the end
		defer p.WaitForKey("Press Enter to exit...")

		dir, err := p.SelectFolder("Select your Vintage Story folder")
		if err != nil {
			sound.Play(audio.Error)
			return &ExitError{Code: ExitFailure, Err: err}
		}
		cfg.WorkingPath = dir
	}

	if err := cfg.Resolve(runtime.GOOS, executableDir()); err != nil {
		sound.Play(audio.Error)
		return &ExitError{Code: ExitFailure, Err: err}
	}
	logger.Info("Working path", "path", cfg.WorkingPath)

	if !cfg.SkipGame && cfg.ForceURL == "" && !install.IsInstalled(cfg.WorkingPath) {
		sound.Play(audio.Error)
		return &ExitError{
			Code: ExitFailure,
			Err:  fmt.Errorf("no Vintage Story installation found in %s (use --working-path or set %s)", cfg.WorkingPath, config.LegacyPathEnv),
		}
	}

	client := transport.NewClient(&http.Client{}, logger)
	client.Progress = progressLogger(logger)

	u := updater.New(updater.Options{
		WorkDir:          cfg.WorkingPath,
		Ignore:           cfg.Ignore,
		Artifact:         cfg.Artifact,
		BaseURL:          cfg.BaseURL,
		ForceURL:         cfg.ForceURL,
		MaxProbes:        cfg.MaxProbes,
		CountdownSeconds: cfg.Countdown,
		CheckRunning:     cfg.CheckRunning,
		SkipGame:         cfg.SkipGame,
		ModsDir:          cfg.ModsPath,
		ModsURL:          cfg.ModsURL,
		ModIgnore:        cfg.ModIgnore,
		StableOnly:       cfg.StableOnly,
		SkipMods:         cfg.SkipMods,
	}, client, logger)
	u.Confirm = func(path string) bool {
		return p.Confirm(fmt.Sprintf("A holding directory from an interrupted run exists at %s. Delete it and continue?", path))
	}
	u.Countdown = p.Countdown

	rep := report.New()
	runErr := u.Run(ctx, rep)
	rep.Finish()

	if !cfg.Quiet {
		fmt.Fprintln(os.Stdout, rep.Render())
	}
	if cfg.Report != "" {
		if err := rep.Save(cfg.Report); err != nil {
			logger.Error("Failed to write the run report", "path", cfg.Report, "err", err)
		}
	}

	code := outcomeCode(rep, runErr)
	switch {
	case code != ExitOK:
		sound.Play(audio.Error)
	case rep.Count(report.Updated) > 0:
		sound.Play(audio.Success)
	default:
		sound.Play(audio.UpToDate)
	}

	if code == ExitOK {
		return nil
	}
	if runErr == nil {
		runErr = errors.New("some updates failed")
	}
	return &ExitError{Code: code, Err: runErr}
}

// outcomeCode maps a finished run to its exit code
func outcomeCode(rep *report.Report, runErr error) int {
	if rep.Unsafe() || updater.IsUnsafe(runErr) {
		return ExitUnsafe
	}
	if runErr != nil || rep.Count(report.Failed) > 0 || rep.Count(report.NotFound) > 0 {
		return ExitFailure
	}
	return ExitOK
}

// progressLogger logs download progress in steps of ten percent
func progressLogger(logger *log.Logger) transport.ProgressCallback {
	last := -1
	return func(bytesComplete, totalBytes int64, percentage int) {
		step := percentage / 10
		if step < last {
			// next download
			last = -1
		}
		if step > last {
			last = step
			logger.Info("Downloading", "progress", fmt.Sprintf("%d%%", percentage), "bytes", bytesComplete, "total", totalBytes)
		}
	}
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
