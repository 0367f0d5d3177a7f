// Package pdf verifies downloaded PDF files and opens them in a viewer.
package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener resolves catalog PDF paths and opens them.
type Opener struct {
	pdfDir    string
	pdfReader string
}

// NewOpener creates an opener rooted at pdfDir. An empty reader means the
// system default viewer.
func NewOpener(pdfDir, pdfReader string) *Opener {
	if pdfReader == "" {
		pdfReader = "system"
	}
	return &Opener{
		pdfDir:    pdfDir,
		pdfReader: pdfReader,
	}
}

// ResolvePath resolves a path relative to the PDF directory and checks
// that the file exists.
func (o *Opener) ResolvePath(relativePath string) (string, error) {
	if o.pdfDir == "" {
		return "", fmt.Errorf("pdf_dir not configured")
	}
	if relativePath == "" {
		return "", fmt.Errorf("no PDF path specified")
	}

	fullPath := filepath.Join(o.pdfDir, relativePath)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}
	return fullPath, nil
}

// Open starts the configured viewer on fullPath without waiting for it.
func (o *Opener) Open(fullPath string) error {
	cmd, err := o.command(runtime.GOOS, fullPath)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func (o *Opener) command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		switch o.pdfReader {
		case "skim":
			return exec.Command("open", "-a", "Skim", path), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", path), nil
		default:
			return exec.Command("open", path), nil
		}
	case "linux":
		switch o.pdfReader {
		case "zathura", "evince", "okular":
			return exec.Command(o.pdfReader, path), nil
		default:
			return exec.Command("xdg-open", path), nil
		}
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
