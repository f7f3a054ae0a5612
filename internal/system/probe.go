// Package system gathers read-only facts about the host used to ground
// command planning.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"lily/internal/logging"
)

// Unknown is the placeholder for any fact the probe could not determine.
const Unknown = "unknown"

// packageManagers are checked in order; the first one on PATH wins.
var packageManagers = []string{"apt", "dpkg", "dnf", "yum", "pacman", "zypper", "apk", "brew"}

// SystemContext is a snapshot of the host environment.
type SystemContext struct {
	OSIdentity     string `json:"os"`
	Desktop        string `json:"desktop"`
	Shell          string `json:"shell"`
	User           string `json:"user"`
	Home           string `json:"home"`
	PackageManager string `json:"installed_packages"`
}

// UnknownContext returns a SystemContext with every fact Unknown.
func UnknownContext() SystemContext {
	return SystemContext{
		OSIdentity:     Unknown,
		Desktop:        Unknown,
		Shell:          Unknown,
		User:           Unknown,
		Home:           Unknown,
		PackageManager: Unknown,
	}
}

// Prober collects a SystemContext. The function fields are seams for tests.
type Prober struct {
	Timeout    time.Duration
	runCommand func(ctx context.Context, name string, args ...string) (string, error)
	lookPath   func(file string) (string, error)
	getenv     func(key string) string
	homeDir    func() (string, error)
	userName   func() (string, error)
}

// NewProber returns a prober backed by the real OS.
func NewProber() *Prober {
	return &Prober{
		Timeout:    5 * time.Second,
		runCommand: runCommand,
		lookPath:   exec.LookPath,
		getenv:     os.Getenv,
		homeDir:    os.UserHomeDir,
		userName: func() (string, error) {
			u, err := user.Current()
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
	}
}

// Probe gathers every fact concurrently. It never fails; missing facts are Unknown.
func (p *Prober) Probe(ctx context.Context) SystemContext {
	timer := logging.StartTimer(logging.CategorySystem, "system probe")
	defer timer.Stop()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	sc := SystemContext{
		Desktop: orUnknown(p.getenv("XDG_CURRENT_DESKTOP")),
		Shell:   orUnknown(p.getenv("SHELL")),
		User:    orUnknown(p.getenv("USER")),
	}
	if sc.User == Unknown && p.userName != nil {
		if name, err := p.userName(); err == nil {
			sc.User = orUnknown(name)
		}
	}
	if home, err := p.homeDir(); err == nil {
		sc.Home = orUnknown(home)
	} else {
		sc.Home = Unknown
	}

	// Each goroutine owns one field, and errors are absorbed into Unknown.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := p.runCommand(gctx, "uname", "-a")
		if err != nil {
			logging.SystemDebug("uname failed: %v", err)
			sc.OSIdentity = Unknown
			return nil
		}
		sc.OSIdentity = orUnknown(out)
		return nil
	})
	g.Go(func() error {
		sc.PackageManager = p.detectPackageManager()
		return nil
	})
	_ = g.Wait()

	logging.SystemDebug("Probed system: os=%q desktop=%s shell=%s pm=%s", sc.OSIdentity, sc.Desktop, sc.Shell, sc.PackageManager)
	return sc
}

func (p *Prober) detectPackageManager() string {
	for _, pm := range packageManagers {
		if path, err := p.lookPath(pm); err == nil {
			return path
		}
	}
	return Unknown
}

// String renders the context the way planning prompts embed it.
func (sc SystemContext) String() string {
	return fmt.Sprintf("- OS: %s\n- Desktop Environment: %s\n- Shell: %s\n- Home Directory: %s\n- Package Manager: %s",
		sc.OSIdentity, sc.Desktop, sc.Shell, sc.Home, sc.PackageManager)
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	return s
}
