// Package console configures terminal output: the structured logger, the
// color palette used for status lines and the window title.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Color palette
const (
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorAvailable = lipgloss.Color("#22C55E")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Styles for status lines and the run summary
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight)

	// SuccessStyle marks completed updates
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	// AvailableStyle marks versions found on the remote
	AvailableStyle = lipgloss.NewStyle().
			Foreground(ColorAvailable)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Options controls the logger built by New
type Options struct {
	Verbose bool
	Quiet   bool
	NoColor bool
	Writer  io.Writer
}

// New builds the run logger. Quiet wins over Verbose.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "vs-updater",
		ReportTimestamp: opts.Verbose,
		Level:           Level(opts.Verbose, opts.Quiet),
	})

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(ColorHighlight)
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(ColorWarning)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(ColorError)
	logger.SetStyles(styles)

	if opts.NoColor {
		DisableColor()
		logger.SetColorProfile(termenv.Ascii)
	}

	return logger
}

// Level maps the verbosity flags to a log level
func Level(verbose, quiet bool) log.Level {
	switch {
	case quiet:
		return log.WarnLevel
	case verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// DisableColor strips color from every lipgloss style rendered afterwards
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
