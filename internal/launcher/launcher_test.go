package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

func TestCommandArgs(t *testing.T) {
	clifp := filepath.Join(t.TempDir(), "CLIFp")
	if err := os.WriteFile(clifp, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cmd, err := Command(clifp, "abcd-1234")
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if got := strings.Join(cmd.Args[1:], " "); got != "play -i abcd-1234" {
		t.Errorf("args = %q", got)
	}
}

func TestCommandMissingBinary(t *testing.T) {
	_, err := Command(filepath.Join(t.TempDir(), "CLIFp"), "abcd")
	var fe *friendlyerrors.UserFriendlyError
	if !errors.As(err, &fe) || !strings.Contains(fe.Message, "does not exist") {
		t.Fatalf("Command() error = %v", err)
	}
	if _, err := Command("", "abcd"); err == nil {
		t.Fatal("empty CLIFp path should fail")
	}
}

func TestPlayRunsCLIFp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "args")
	clifp := filepath.Join(dir, "CLIFp")
	script := "#!/bin/sh\necho \"$@\" > " + out + "\n"
	if err := os.WriteFile(clifp, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Play(clifp, "abcd-1234"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if b, err := os.ReadFile(out); err == nil && strings.TrimSpace(string(b)) == "play -i abcd-1234" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("CLIFp stand-in never recorded its arguments")
}

func TestLabel(t *testing.T) {
	if Label(true) != "Play" || Label(false) != "Play (Legacy)" {
		t.Errorf("labels = %q / %q", Label(true), Label(false))
	}
}
