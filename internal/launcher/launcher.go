// Package launcher starts external programs: CLIFp for playing an entry and
// the desktop opener for images.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

// Label is the play button text. Entries without active data on disk go
// through the legacy path.
func Label(activeDataOnDisk bool) string {
	if activeDataOnDisk {
		return "Play"
	}
	return "Play (Legacy)"
}

// Command builds `<clifp> play -i <id>` after checking that clifp exists.
func Command(clifpPath, id string) (*exec.Cmd, error) {
	if clifpPath == "" {
		return nil, friendlyerrors.PathError("CLIFp", exec.ErrNotFound)
	}
	if id == "" {
		return nil, fmt.Errorf("play: empty id: %w", friendlyerrors.ErrCallerMisuse)
	}
	st, err := os.Stat(clifpPath)
	if err != nil {
		return nil, friendlyerrors.PathError(clifpPath, err)
	}
	if st.IsDir() {
		return nil, friendlyerrors.PathError(clifpPath, fmt.Errorf("%s is a directory", clifpPath))
	}
	return exec.Command(clifpPath, "play", "-i", id), nil
}

// Play starts CLIFp and returns without waiting. The game outlives the
// browser; a goroutine reaps the process.
func Play(clifpPath, id string) (*os.Process, error) {
	cmd, err := Command(clifpPath, id)
	if err != nil { return nil, err }
	if err := cmd.Start(); err != nil { return nil, friendlyerrors.PathError(clifpPath, err) }
	go func() { _ = cmd.Wait() }()
	return cmd.Process, nil
}

// Open hands p to the platform's default viewer.
func Open(p string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", p)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", p)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", p)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}
