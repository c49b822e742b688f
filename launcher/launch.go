package launcher

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// EmbedURL returns base with the embed flag set, as used for the framed
// dashboard. The flag hides the dashboard's own toolbar.
func EmbedURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing dashboard url: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	q := u.Query()
	q.Set("embed", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BrowserCommand returns the argv that opens target in the default browser on goos.
func BrowserCommand(goos, target string) []string {
	switch goos {
	case "darwin":
		return []string{"open", target}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		return []string{"xdg-open", target}
	}
}

// ShellCommand renders BrowserCommand as a quoted shell line for display.
func ShellCommand(goos, target string) string {
	argv := BrowserCommand(goos, target)
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// Open starts the browser on target without waiting for it.
func Open(target string) error {
	argv := BrowserCommand(runtime.GOOS, target)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", argv[0], err)
	}
	// reap in the background so the child does not linger as a zombie
	go func() { _ = cmd.Wait() }()
	return nil
}

func shellQuote(s string) string {
	// wrap in single quotes, escape existing single quotes
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
