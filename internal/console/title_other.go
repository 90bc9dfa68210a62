//go:build !windows

package console

import (
	"os"

	"github.com/muesli/termenv"
)

// SetTitle sets the terminal title when stdout is a color-capable terminal
func SetTitle(title string) error {
	out := termenv.NewOutput(os.Stdout)
	if out.Profile == termenv.Ascii {
		return nil
	}
	out.SetWindowTitle(title)
	return nil
}

// GetWindow has no meaning outside Windows
func GetWindow() uintptr {
	return 0
}
