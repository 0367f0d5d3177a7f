// Package clipboard copies citations to the system clipboard through the
// platform's clipboard tool.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard tool is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// lookPathFunc matches exec.LookPath.
type lookPathFunc func(string) (string, error)

// command picks the clipboard tool for goos. On Linux a Wayland session
// prefers wl-copy; xclip and xsel serve X11.
func command(goos string, wayland bool, lookPath lookPathFunc) ([]string, error) {
	var tools [][]string
	switch goos {
	case "darwin":
		tools = [][]string{{"pbcopy"}}
	case "linux", "freebsd":
		if wayland {
			tools = append(tools, []string{"wl-copy"})
		}
		tools = append(tools,
			[]string{"xclip", "-selection", "clipboard"},
			[]string{"xsel", "--clipboard", "--input"},
		)
	case "windows":
		tools = [][]string{{"clip"}}
	}

	for _, t := range tools {
		if _, err := lookPath(t[0]); err == nil {
			return t, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

func systemCommand() ([]string, error) {
	return command(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "", exec.LookPath)
}

// IsAvailable reports whether a clipboard tool was found.
func IsAvailable() bool {
	_, err := systemCommand()
	return err == nil
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	argv, err := systemCommand()
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
