package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrSelectionCancelled is returned when the folder dialog is closed without a choice
var ErrSelectionCancelled = errors.New("folder selection cancelled")

// SoundPlayer defines the interface for playing sounds
type SoundPlayer interface {
	Play(name string)
}

// Prompter asks the operator questions on a terminal
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// AssumeYes answers every confirmation with yes without reading input
	AssumeYes bool
	// Interval is the length of one countdown step
	Interval time.Duration
	Sound    SoundPlayer
	// GetConsoleWindow returns the parent window handle for dialogs
	GetConsoleWindow func() uintptr

	reader *bufio.Reader
}

// New creates a Prompter on stdin and stderr
func New(assumeYes bool) *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stderr, AssumeYes: assumeYes, Interval: time.Second}
}

// Confirm asks the user to confirm an action. Anything but y or yes,
// including end of input, is a refusal.
func (p *Prompter) Confirm(prompt string) bool {
	if p.AssumeYes {
		fmt.Fprintf(p.out(), "%s (y/N): y\n", prompt)
		return true
	}

	fmt.Fprintf(p.out(), "%s (y/N): ", prompt)
	response, err := p.input().ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(p.out())
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	confirmed := response == "y" || response == "yes"

	if p.Sound != nil {
		p.Sound.Play("select")
	}

	return confirmed
}

// WaitForKey waits for user to press Enter
func (p *Prompter) WaitForKey(prompt string) {
	if p.AssumeYes {
		return
	}
	fmt.Fprint(p.out(), prompt)
	p.input().ReadBytes('\n')
}

// Countdown prints a once-per-step countdown before a destructive step.
// It returns the context error if cancelled before reaching zero.
func (p *Prompter) Countdown(ctx context.Context, seconds int) error {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for remaining := seconds; remaining > 0; remaining-- {
		unit := "seconds"
		if remaining == 1 {
			unit = "second"
		}
		fmt.Fprintf(p.out(), "Continuing in %d %s...\n", remaining, unit)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return ctx.Err()
}

func (p *Prompter) input() *bufio.Reader {
	if p.reader == nil {
		in := p.In
		if in == nil {
			in = os.Stdin
		}
		p.reader = bufio.NewReader(in)
	}
	return p.reader
}

func (p *Prompter) out() io.Writer {
	if p.Out == nil {
		return os.Stderr
	}
	return p.Out
}
