// Package progress creates the progress bars shown by long-running phases.
package progress

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
)

// New creates and starts a progress bar with consistent settings. A quiet
// bar draws nothing but still counts.
func New(total int, prefix string, quiet bool) *pb.ProgressBar {
	var w io.Writer = os.Stderr
	if quiet {
		w = io.Discard
	}
	bar := pb.Full.New(total)
	bar.SetWriter(w)
	bar.Set("prefix", prefix+" ")
	bar.Set(pb.CleanOnFinish, true)
	return bar.Start()
}
