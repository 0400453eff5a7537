package keyboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/ayusman/volante/internal/binding"
)

// ErrUnsupportedPlatform is returned when no key injection tool is known for
// the running OS.
var ErrUnsupportedPlatform = errors.New("key injection not supported on this platform")

// runFunc executes a command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CommandEmitter injects keys by running the platform's automation tool:
// xdotool on Linux and osascript on macOS.
type CommandEmitter struct {
	goos    string
	timeout time.Duration
	run     runFunc
}

// NewCommandEmitter creates an emitter for the running OS. The tool itself is
// looked up on the PATH.
func NewCommandEmitter(timeout time.Duration) (*CommandEmitter, error) {
	e := newCommandEmitter(runtime.GOOS, timeout, runCommand)

	tool, err := e.tool()
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(tool); err != nil {
		return nil, fmt.Errorf("%s not found: %w", tool, err)
	}
	return e, nil
}

func newCommandEmitter(goos string, timeout time.Duration, run runFunc) *CommandEmitter {
	return &CommandEmitter{goos: goos, timeout: timeout, run: run}
}

func (e *CommandEmitter) tool() (string, error) {
	switch e.goos {
	case "linux":
		return "xdotool", nil
	case "darwin":
		return "osascript", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, e.goos)
}

func (e *CommandEmitter) Press(key binding.Key) error {
	return e.send(Press, key)
}

func (e *CommandEmitter) Release(key binding.Key) error {
	return e.send(Release, key)
}

func (e *CommandEmitter) send(action Action, key binding.Key) error {
	name, args, err := e.command(action, key)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	out, err := e.run(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", action, key, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// command builds the tool invocation for one key event.
func (e *CommandEmitter) command(action Action, key binding.Key) (string, []string, error) {
	if key.IsNone() {
		return "", nil, fmt.Errorf("%w: empty key", binding.ErrInvalidKey)
	}

	switch e.goos {
	case "linux":
		sym, err := xdotoolKeysym(key)
		if err != nil {
			return "", nil, err
		}
		verb := "keydown"
		if action == Release {
			verb = "keyup"
		}
		return "xdotool", []string{verb, sym}, nil

	case "darwin":
		target, err := appleScriptKey(key)
		if err != nil {
			return "", nil, err
		}
		verb := "key down"
		if action == Release {
			verb = "key up"
		}
		script := fmt.Sprintf(`tell application "System Events" to %s %s`, verb, target)
		return "osascript", []string{"-e", script}, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, e.goos)
}
