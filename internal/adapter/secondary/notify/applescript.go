package notify

import (
	"fmt"
	"os/exec"
	"strings"

	"multitimer/internal/domain"
)

// AppleScriptSink implements domain.NotificationSink using macOS osascript.
// This is a secondary adapter.
type AppleScriptSink struct {
	run func(name string, args ...string) ([]byte, error)
}

// NewAppleScriptSink creates a new AppleScript notification sink.
func NewAppleScriptSink() *AppleScriptSink {
	return &AppleScriptSink{run: func(name string, args ...string) ([]byte, error) {
		return exec.Command(name, args...).CombinedOutput()
	}}
}

// Notify shows ev in the notification center.
func (a *AppleScriptSink) Notify(ev domain.Event) error {
	output, err := a.run("osascript", "-e", script(Format(ev)))
	if err != nil {
		return fmt.Errorf("osascript failed: %w, output: %s", err, string(output))
	}
	return nil
}

func script(m Message) string {
	s := fmt.Sprintf("display notification %s with title %s", quote(m.Body), quote(m.Title))
	if m.Sound != "" {
		s += " sound name " + quote(m.Sound)
	}
	return s
}

// quote renders an AppleScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
