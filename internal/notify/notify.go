// Package notify talks to the desktop: system notifications for approval
// gates and opening files in their default application.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mpjhorner/specdash/internal/model"
)

// AppName is the title used for notifications
const AppName = "specdash"

// command runs an external program; replaced in tests
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// start launches an external program without waiting for it
var start = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

var goos = runtime.GOOS

// Send sends a system notification
func Send(title, message string) error {
	switch goos {
	case "darwin":
		return sendMacOS(title, message)
	case "linux":
		return sendLinux(title, message)
	default:
		// Silently ignore unsupported platforms
		return nil
	}
}

func sendMacOS(title, message string) error {
	script := fmt.Sprintf("display notification %s with title %s", appleScriptString(message), appleScriptString(title))
	return command("osascript", "-e", script)
}

func sendLinux(title, message string) error {
	return command("notify-send", "--app-name="+AppName, title, message)
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// Gate announces a new approval gate
func Gate(g model.ApprovalGate) error {
	title := AppName + ": approval needed"
	if g.Flow != "" {
		title = fmt.Sprintf("%s: %s approval needed", AppName, g.Flow.DisplayName())
	}
	return Send(title, g.Message)
}

// OpenFile opens path with the system's default application
func OpenFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("no file to open")
	}

	switch goos {
	case "darwin":
		return start("open", path)
	case "windows":
		return start("cmd", "/c", "start", "", path)
	default:
		return start("xdg-open", path)
	}
}
