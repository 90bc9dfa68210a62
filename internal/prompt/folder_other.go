//go:build !windows

package prompt

import "fmt"

// SelectFolder is only available on Windows
func (p *Prompter) SelectFolder(title string) (string, error) {
	return "", fmt.Errorf("folder selection dialog is not supported on this platform")
}
