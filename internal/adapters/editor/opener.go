package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoViewer is returned when neither an editor nor a pager can be found
var ErrNoViewer = errors.New("no viewer found: set $EDITOR or $PAGER")

// fallbacks are tried in order when no environment variable names a program
var fallbacks = []string{"nvim", "vim", "vi", "nano", "less", "more"}

// Opener shows written reports in the user's editor or pager
type Opener struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
}

// NewOpener creates a new report opener
func NewOpener() *Opener {
	return &Opener{getenv: os.Getenv, lookPath: exec.LookPath}
}

// OpenFile opens a report and waits for the viewer to exit
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd viewing path, attached to the terminal.
// It suits bubbletea's ExecProcess.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("report %s: %w", path, err)
	}

	argv := o.viewer()
	if len(argv) == 0 {
		return nil, ErrNoViewer
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// viewer returns the program and its arguments. Variables may carry flags,
// e.g. EDITOR="code --wait".
func (o *Opener) viewer() []string {
	for _, name := range []string{"EDITOR", "VISUAL", "PAGER"} {
		if fields := strings.Fields(o.getenv(name)); len(fields) > 0 {
			return fields
		}
	}

	for _, prog := range fallbacks {
		if path, err := o.lookPath(prog); err == nil {
			return []string{path}
		}
	}

	return nil
}
