package editor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpener(env map[string]string, installed ...string) *Opener {
	return &Opener{
		getenv: func(k string) string { return env[k] },
		lookPath: func(prog string) (string, error) {
			for _, p := range installed {
				if p == prog {
					return "/usr/bin/" + p, nil
				}
			}
			return "", errors.New("not found")
		},
	}
}

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("report"), 0o644))
	return path
}

func TestCommand_EditorWithFlags(t *testing.T) {
	path := writeReport(t)
	o := newTestOpener(map[string]string{"EDITOR": "code --wait", "PAGER": "less"})

	cmd, err := o.Command(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"code", "--wait", path}, cmd.Args)
}

func TestCommand_PagerWhenNoEditor(t *testing.T) {
	path := writeReport(t)
	o := newTestOpener(map[string]string{"PAGER": "less -R"})

	cmd, err := o.Command(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"less", "-R", path}, cmd.Args)
}

func TestCommand_Fallback(t *testing.T) {
	path := writeReport(t)
	o := newTestOpener(nil, "nano", "less")

	cmd, err := o.Command(path)

	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/nano", cmd.Path)
}

func TestCommand_NoViewer(t *testing.T) {
	path := writeReport(t)
	o := newTestOpener(nil)

	_, err := o.Command(path)

	assert.ErrorIs(t, err, ErrNoViewer)
}

func TestCommand_MissingReport(t *testing.T) {
	o := newTestOpener(map[string]string{"EDITOR": "vi"})

	_, err := o.Command(filepath.Join(t.TempDir(), "gone.txt"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
