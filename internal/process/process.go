// Package process finds processes that would be disturbed by a wipe.
package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/shirou/gopsutil/v4/process"
)

// Match describes a process whose executable lives under a watched directory
type Match struct {
	PID  int32
	Name string
	Exe  string
}

func (m Match) String() string {
	return fmt.Sprintf("%s (pid %d)", m.Name, m.PID)
}

// RunningInDir lists processes other than the current one whose executable
// is located inside dir. Processes whose executable cannot be read are skipped.
func RunningInDir(ctx context.Context, dir string) ([]Match, error) {
	root, err := canonical(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	procs, err := ps.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	self := int32(os.Getpid())
	var matches []Match
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" {
			continue
		}
		if !within(root, exe) {
			continue
		}
		name, _ := p.NameWithContext(ctx)
		if name == "" {
			name = filepath.Base(exe)
		}
		matches = append(matches, Match{PID: p.Pid, Name: name, Exe: exe})
	}

	return matches, nil
}

func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.Clean(abs), nil
}

func within(root, exe string) bool {
	exe, err := canonical(exe)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, exe)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "."
}
