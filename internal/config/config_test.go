package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	th "github.com/vs-updater/vs-updater/testing"
)

func load(t *testing.T, args []string, configFile string) *Config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	// keep the search away from real config files
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), fs, configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

// TestLoad_Defaults tests default values
func TestLoad_Defaults(t *testing.T) {
	t.Setenv(LegacyPathEnv, "")
	cfg := load(t, nil, "")

	if cfg.GameType != "server" {
		t.Errorf("GameType = %q, want server", cfg.GameType)
	}
	if cfg.BaseURL != DefaultBaseURL || cfg.ModsURL != DefaultModsURL {
		t.Errorf("URLs = %q, %q", cfg.BaseURL, cfg.ModsURL)
	}
	if cfg.Countdown != DefaultCountdown {
		t.Errorf("Countdown = %d, want %d", cfg.Countdown, DefaultCountdown)
	}
	if !cfg.CheckRunning {
		t.Error("CheckRunning = false, want true")
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want none", cfg.ConfigFile)
	}
}

// TestLoad_Flags tests flag parsing including comma lists
func TestLoad_Flags(t *testing.T) {
	cfg := load(t, []string{
		"--ignore-folders=Saves,Logs",
		"--ignore-files", "serverconfig.json",
		"--game-type=client",
		"--stable-only",
		"-y",
	}, "")

	if !reflect.DeepEqual(cfg.IgnoreFolders, []string{"Saves", "Logs"}) {
		t.Errorf("IgnoreFolders = %v", cfg.IgnoreFolders)
	}
	if !reflect.DeepEqual(cfg.IgnoreFiles, []string{"serverconfig.json"}) {
		t.Errorf("IgnoreFiles = %v", cfg.IgnoreFiles)
	}
	if cfg.GameType != "client" || !cfg.StableOnly || !cfg.Yes {
		t.Errorf("cfg = %+v", cfg)
	}
}

// TestLoad_Environment tests environment precedence
func TestLoad_Environment(t *testing.T) {
	t.Run("prefixed variables", func(t *testing.T) {
		t.Setenv("VS_UPDATER_GAME_TYPE", "client")
		t.Setenv("VS_UPDATER_COUNTDOWN", "0")
		cfg := load(t, nil, "")
		if cfg.GameType != "client" || cfg.Countdown != 0 {
			t.Errorf("GameType = %q, Countdown = %d", cfg.GameType, cfg.Countdown)
		}
	})

	t.Run("legacy working path variable", func(t *testing.T) {
		t.Setenv(LegacyPathEnv, "/srv/vintagestory")
		cfg := load(t, nil, "")
		if cfg.WorkingPath != "/srv/vintagestory" {
			t.Errorf("WorkingPath = %q", cfg.WorkingPath)
		}
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv(LegacyPathEnv, "/srv/vintagestory")
		cfg := load(t, []string{"--working-path=/opt/vs"}, "")
		if cfg.WorkingPath != "/opt/vs" {
			t.Errorf("WorkingPath = %q", cfg.WorkingPath)
		}
	})
}

// TestLoad_ConfigFile tests reading an explicit config file
func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vs-updater.yaml")
	th.WriteFile(t, path, "game-type: client\nignore-folders:\n  - Saves\n  - Logs\ncountdown: 2\n")

	cfg := load(t, []string{"--countdown=3"}, path)
	if cfg.GameType != "client" {
		t.Errorf("GameType = %q, want client", cfg.GameType)
	}
	if !reflect.DeepEqual(cfg.IgnoreFolders, []string{"Saves", "Logs"}) {
		t.Errorf("IgnoreFolders = %v", cfg.IgnoreFolders)
	}
	if cfg.Countdown != 3 {
		t.Errorf("Countdown = %d, want flag value 3", cfg.Countdown)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

// TestLoad_MissingExplicitConfig tests that a named config file must exist
func TestLoad_MissingExplicitConfig(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)

	_, err := Load(viper.New(), fs, filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func validConfig(dir string) *Config {
	return &Config{
		WorkingPath: dir,
		GameType:    "server",
		BaseURL:     DefaultBaseURL,
		ModsURL:     DefaultModsURL,
		Countdown:   DefaultCountdown,
	}
}

// TestResolve tests validation and derived fields
func TestResolve(t *testing.T) {
	dir := t.TempDir()
	th.WriteFile(t, filepath.Join(dir, "file.txt"), "")

	tests := []struct {
		name    string
		modify  func(c *Config)
		goos    string
		wantErr bool
	}{
		{name: "valid", goos: "linux"},
		{name: "missing working path", goos: "linux", modify: func(c *Config) { c.WorkingPath = filepath.Join(dir, "missing") }, wantErr: true},
		{name: "working path is a file", goos: "linux", modify: func(c *Config) { c.WorkingPath = filepath.Join(dir, "file.txt") }, wantErr: true},
		{name: "unsupported os", goos: "plan9", wantErr: true},
		{name: "windows client", goos: "windows", modify: func(c *Config) { c.GameType = "client" }, wantErr: true},
		{name: "skip game ignores game type", goos: "plan9", modify: func(c *Config) { c.SkipGame = true }},
		{name: "nested ignore entry", goos: "linux", modify: func(c *Config) { c.IgnoreFolders = []string{"Saves/world"} }, wantErr: true},
		{name: "holding dir ignored", goos: "linux", modify: func(c *Config) { c.IgnoreFolders = []string{".temp"} }, wantErr: true},
		{name: "bad base url", goos: "linux", modify: func(c *Config) { c.BaseURL = "ftp://example.com" }, wantErr: true},
		{name: "bad force url", goos: "linux", modify: func(c *Config) { c.ForceURL = "not a url" }, wantErr: true},
		{name: "negative countdown", goos: "linux", modify: func(c *Config) { c.Countdown = -1 }, wantErr: true},
		{name: "missing mods path", goos: "linux", modify: func(c *Config) { c.ModsPath = filepath.Join(dir, "Mods") }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig(dir)
			if tt.modify != nil {
				tt.modify(c)
			}
			err := c.Resolve(tt.goos, dir)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Resolve() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
			}
		})
	}
}

// TestResolve_DefaultDir tests falling back to the executable's directory
func TestResolve_DefaultDir(t *testing.T) {
	dir := t.TempDir()
	c := validConfig("")

	if err := c.Resolve("linux", dir); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want, _ := filepath.Abs(dir); c.WorkingPath != want {
		t.Errorf("WorkingPath = %q, want %q", c.WorkingPath, want)
	}
	if c.Artifact.Prefix != "vs_server_linux-x64_" {
		t.Errorf("Artifact = %+v", c.Artifact)
	}
}

// TestResolve_IgnoreFile tests merging entries from the ignore file
func TestResolve_IgnoreFile(t *testing.T) {
	dir := t.TempDir()
	th.WriteFile(t, filepath.Join(dir, IgnoreFileName), "# kept across updates\nLogs\nSaves\n")

	c := validConfig(dir)
	c.IgnoreFolders = []string{"Saves"}
	c.IgnoreFiles = []string{"serverconfig.json"}

	if err := c.Resolve("linux", dir); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := []string{"Saves", "serverconfig.json", "Logs", IgnoreFileName}
	if !reflect.DeepEqual(c.Ignore, want) {
		t.Errorf("Ignore = %v, want %v", c.Ignore, want)
	}
}
