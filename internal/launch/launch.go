// Package launch opens target apps by their deep link.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrLaunchFailed means the target could not be opened: the app is not
// installed or its scheme is unsupported. It is the one error shown to the user.
var ErrLaunchFailed = errors.New("could not open app")

// Launcher opens a deep link.
type Launcher interface {
	Open(ctx context.Context, deepLink string) error
}

// OS opens links with the platform's URL handler.
type OS struct{}

// Open hands deepLink to open, xdg-open or rundll32.
func (OS) Open(ctx context.Context, deepLink string) error {
	if strings.TrimSpace(deepLink) == "" || !strings.Contains(deepLink, ":") {
		return fmt.Errorf("%w: %q is not a link", ErrLaunchFailed, deepLink)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", deepLink)
	case "linux":
		cmd = exec.CommandContext(ctx, "xdg-open", deepLink)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", deepLink)
	default:
		return fmt.Errorf("%w: opening links is not supported on %s", ErrLaunchFailed, runtime.GOOS)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLaunchFailed, deepLink, err)
	}
	return nil
}

// Scripted records opened links and fails for the links in Fail.
type Scripted struct {
	mu     sync.Mutex
	Fail   map[string]bool
	opened []string
}

// Open records deepLink.
func (s *Scripted) Open(_ context.Context, deepLink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail[deepLink] {
		return fmt.Errorf("%w: %s", ErrLaunchFailed, deepLink)
	}
	s.opened = append(s.opened, deepLink)
	return nil
}

// Opened returns the links opened so far.
func (s *Scripted) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// DryRun reports links instead of opening them.
type DryRun struct {
	Print func(deepLink string)
}

// Open calls Print.
func (d DryRun) Open(_ context.Context, deepLink string) error {
	if d.Print != nil {
		d.Print(deepLink)
	}
	return nil
}

var (
	_ Launcher = OS{}
	_ Launcher = (*Scripted)(nil)
	_ Launcher = DryRun{}
)
