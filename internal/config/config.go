// Package config loads updater settings from flags, the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vs-updater/vs-updater/internal/paths"
	"github.com/vs-updater/vs-updater/internal/platform"
	"github.com/vs-updater/vs-updater/internal/quarantine"
)

// ErrInvalid wraps every configuration error
var ErrInvalid = errors.New("invalid configuration")

const (
	// EnvPrefix prefixes every environment variable, e.g. VS_UPDATER_GAME_TYPE
	EnvPrefix = "VS_UPDATER"
	// LegacyPathEnv names the game directory
	LegacyPathEnv = "VINTAGE_STORY"
	// ConfigName is the config file base name, searched next to the executable
	// and in the current directory
	ConfigName = "vs-updater"
	// IgnoreFileName lists extra protected entries inside the working directory
	IgnoreFileName = ".vs-updater-ignore"

	DefaultBaseURL   = "https://cdn.vintagestory.at/gamefiles/stable/"
	DefaultModsURL   = "https://mods.vintagestory.at/"
	DefaultCountdown = 5
)

// Config holds every setting of a run
type Config struct {
	IgnoreFolders []string `mapstructure:"ignore-folders"`
	IgnoreFiles   []string `mapstructure:"ignore-files"`
	WorkingPath   string   `mapstructure:"working-path"`
	GameType      string   `mapstructure:"game-type"`
	ModsPath      string   `mapstructure:"mods-path"`
	ForceURL      string   `mapstructure:"force-url"`
	SkipGame      bool     `mapstructure:"skip-game"`
	SkipMods      bool     `mapstructure:"skip-mods"`
	StableOnly    bool     `mapstructure:"stable-only"`
	ModIgnore     []string `mapstructure:"mod-ignore"`
	BaseURL       string   `mapstructure:"base-url"`
	ModsURL       string   `mapstructure:"mods-url"`
	Countdown     int      `mapstructure:"countdown"`
	Yes           bool     `mapstructure:"yes"`
	CheckRunning  bool     `mapstructure:"check-running"`
	MaxProbes     int      `mapstructure:"max-probes"`
	SelectPath    bool     `mapstructure:"select-path"`
	NoSound       bool     `mapstructure:"no-sound"`
	Verbose       bool     `mapstructure:"verbose"`
	Quiet         bool     `mapstructure:"quiet"`
	NoColor       bool     `mapstructure:"no-color"`
	Report        string   `mapstructure:"report"`

	// Ignore is the merged, validated list of protected top-level entries of
	// the working directory. Filled by Resolve.
	Ignore []string `mapstructure:"-"`
	// Artifact is the release archive for this OS and game type. Filled by Resolve.
	Artifact platform.Artifact `mapstructure:"-"`
	// ConfigFile is the config file that was read, if any
	ConfigFile string `mapstructure:"-"`
}

// RegisterFlags defines every configuration flag on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSlice("ignore-folders", nil, "folders in the working path to keep (comma separated)")
	fs.StringSlice("ignore-files", nil, "files in the working path to keep (comma separated)")
	fs.String("working-path", "", "game installation directory (default: $"+LegacyPathEnv+" or the executable's directory)")
	fs.String("game-type", platform.Server, "game type to update: server or client")
	fs.String("mods-path", "", "directory holding mod folders to update")
	fs.String("force-url", "", "replace the installation from this archive URL instead of probing")
	fs.Bool("skip-game", false, "do not update the game installation")
	fs.Bool("skip-mods", false, "do not update mods")
	fs.Bool("stable-only", false, "ignore pre-release mod files (-pre, -rc)")
	fs.StringSlice("mod-ignore", nil, "entries inside each mod folder to keep (comma separated)")
	fs.String("base-url", DefaultBaseURL, "game archive CDN")
	fs.String("mods-url", DefaultModsURL, "mod repository")
	fs.Int("countdown", DefaultCountdown, "seconds to wait before wiping the installation")
	fs.BoolP("yes", "y", false, "delete leftover holding directories without asking")
	fs.Bool("check-running", true, "refuse to wipe while a program runs from the working path")
	fs.Int("max-probes", 0, "maximum number of version probes (0 = unlimited)")
	fs.Bool("select-path", false, "choose the working path with a folder dialog (Windows)")
	fs.Bool("no-sound", false, "disable sound cues")
	fs.BoolP("verbose", "v", false, "log every probe and state transition")
	fs.BoolP("quiet", "q", false, "only log warnings and errors")
	fs.Bool("no-color", false, "disable colored output")
	fs.String("report", "", "write a JSON run report to this path")
}

// Load reads configuration from fs, the environment and the config file.
// An explicit configFile must exist; otherwise a missing file is not an error.
func Load(v *viper.Viper, fs *pflag.FlagSet, configFile string) (*Config, error) {
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("working-path", EnvPrefix+"_WORKING_PATH", LegacyPathEnv); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	return &cfg, nil
}

// Resolve validates the settings and fills the derived fields. defaultDir is
// used when no working path is configured.
func (c *Config) Resolve(goos, defaultDir string) error {
	if c.Quiet && c.Verbose {
		c.Verbose = false
	}

	if c.WorkingPath == "" {
		c.WorkingPath = defaultDir
	}
	wp, err := existingDir(c.WorkingPath)
	if err != nil {
		return fmt.Errorf("%w: the working-path %s is invalid: %v", ErrInvalid, c.WorkingPath, err)
	}
	c.WorkingPath = wp

	if c.ModsPath != "" {
		mp, err := existingDir(c.ModsPath)
		if err != nil {
			return fmt.Errorf("%w: the mods-path %s is invalid: %v", ErrInvalid, c.ModsPath, err)
		}
		c.ModsPath = mp
	}

	if !c.SkipGame {
		artifact, err := platform.Resolve(goos, c.GameType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		c.Artifact = artifact
	}

	urls := []struct{ name, raw string }{
		{"base-url", c.BaseURL},
		{"mods-url", c.ModsURL},
		{"force-url", c.ForceURL},
	}
	for _, u := range urls {
		if u.raw == "" && u.name == "force-url" {
			continue
		}
		if err := checkURL(u.raw); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalid, u.name, u.raw, err)
		}
	}

	if c.Countdown < 0 {
		return fmt.Errorf("%w: countdown must not be negative", ErrInvalid)
	}
	if c.MaxProbes < 0 {
		return fmt.Errorf("%w: max-probes must not be negative", ErrInvalid)
	}

	ignoreFile := filepath.Join(c.WorkingPath, IgnoreFileName)
	extra, err := paths.LoadExcludes(ignoreFile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := os.Stat(ignoreFile); err == nil {
		extra = append(extra, IgnoreFileName)
	}

	ignore := paths.Dedupe(append(append(append([]string{}, c.IgnoreFolders...), c.IgnoreFiles...), extra...))
	if err := checkEntries(ignore); err != nil {
		return err
	}
	c.Ignore = ignore

	c.ModIgnore = paths.Dedupe(c.ModIgnore)
	return checkEntries(c.ModIgnore)
}

func checkEntries(names []string) error {
	for _, name := range names {
		if err := paths.ValidateEntryName(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if name == quarantine.HoldingName {
			return fmt.Errorf("%w: %s is the holding directory and cannot be ignored", ErrInvalid, name)
		}
	}
	return nil
}

func existingDir(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory")
	}
	return abs, nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
