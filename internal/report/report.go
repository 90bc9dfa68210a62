// Package report collects per-target outcomes of a run and renders them as a
// summary or a JSON file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vs-updater/vs-updater/internal/console"
)

// Outcome is the final state of one target
type Outcome string

const (
	Updated  Outcome = "updated"
	UpToDate Outcome = "up-to-date"
	NotFound Outcome = "not-found"
	Skipped  Outcome = "skipped"
	Failed   Outcome = "failed"
)

// Kinds of target
const (
	KindGame = "game"
	KindMod  = "mod"
)

// Result describes what happened to one target
type Result struct {
	Kind    string  `json:"kind"`
	Target  string  `json:"target"`
	Outcome Outcome `json:"outcome"`
	From    string  `json:"from,omitempty"`
	To      string  `json:"to,omitempty"`
	Detail  string  `json:"detail,omitempty"`
	// Unsafe marks failures that left the target wiped or partially restored
	Unsafe bool `json:"unsafe,omitempty"`
}

// Report is the ordered list of results for a run
type Report struct {
	mu       sync.Mutex
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Results  []Result  `json:"results"`
}

// New starts a report
func New() *Report {
	return &Report{Started: time.Now()}
}

// Add appends a result
func (r *Report) Add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, res)
}

// Finish stamps the end time
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finished = time.Now()
}

// Count returns how many results have the given outcome
func (r *Report) Count(o Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Unsafe reports whether any target failed after it was wiped
func (r *Report) Unsafe() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.Results {
		if res.Unsafe {
			return true
		}
	}
	return false
}

// Render formats the summary shown at the end of a run
func (r *Report) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.WriteString(console.TitleStyle.Render("Update summary"))
	b.WriteString("\n\n")

	if len(r.Results) == 0 {
		b.WriteString(console.MutedStyle.Render("  nothing to do"))
		b.WriteString("\n")
		return b.String()
	}

	width := 0
	for _, res := range r.Results {
		if w := lipgloss.Width(label(res)); w > width {
			width = w
		}
	}

	for _, res := range r.Results {
		name := lipgloss.NewStyle().Width(width).Render(label(res))
		fmt.Fprintf(&b, "  %s  %s", name, style(res).Render(string(res.Outcome)))
		if change := versions(res); change != "" {
			fmt.Fprintf(&b, "  %s", change)
		}
		if res.Detail != "" {
			fmt.Fprintf(&b, "  %s", console.MutedStyle.Render(res.Detail))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Save writes the report as indented JSON
func (r *Report) Save(path string) error {
	r.mu.Lock()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func label(res Result) string {
	if res.Kind == KindGame {
		return res.Target
	}
	return res.Kind + " " + res.Target
}

func versions(res Result) string {
	switch {
	case res.From != "" && res.To != "" && res.From != res.To:
		return res.From + " -> " + res.To
	case res.To != "":
		return res.To
	default:
		return res.From
	}
}

func style(res Result) lipgloss.Style {
	switch res.Outcome {
	case Updated:
		return console.SuccessStyle
	case UpToDate:
		return console.AvailableStyle
	case Failed:
		return console.ErrorStyle
	default:
		return console.WarningStyle
	}
}
