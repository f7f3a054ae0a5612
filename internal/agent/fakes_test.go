package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lily/internal/system"
	"lily/internal/tactile"
)

// scriptedOracle routes prompts by their section marker and replays the
// queued replies for that operation. An exhausted queue repeats its last entry.
type scriptedOracle struct {
	mu      sync.Mutex
	replies map[string][]string
	errs    map[string]error
	prompts map[string][]string
}

func newScriptedOracle() *scriptedOracle {
	return &scriptedOracle{
		replies: map[string][]string{},
		errs:    map[string]error{},
		prompts: map[string][]string{},
	}
}

func (o *scriptedOracle) on(marker string, replies ...string) *scriptedOracle {
	o.replies[marker] = append(o.replies[marker], replies...)
	return o
}

func (o *scriptedOracle) fail(marker string, err error) *scriptedOracle {
	o.errs[marker] = err
	return o
}

var allMarkers = []string{markerSynthesize, markerSafety, markerGUI, markerAnalyze, markerSummarize}

func (o *scriptedOracle) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, m := range allMarkers {
		if !strings.Contains(prompt, m) {
			continue
		}
		o.prompts[m] = append(o.prompts[m], prompt)
		if err := o.errs[m]; err != nil {
			return "", err
		}
		q := o.replies[m]
		if len(q) == 0 {
			return "", errors.New("no scripted reply for " + m)
		}
		reply := q[0]
		if len(q) > 1 {
			o.replies[m] = q[1:]
		}
		return reply, nil
	}
	return "", errors.New("unrecognized prompt")
}

func (o *scriptedOracle) calls(marker string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.prompts[marker]...)
}

type fixedProber struct{ sc system.SystemContext }

func (p fixedProber) Probe(context.Context) system.SystemContext { return p.sc }

func testSystem() system.SystemContext {
	return system.SystemContext{
		OSIdentity:     "Linux test 6.1.0",
		Desktop:        "GNOME",
		Shell:          "/bin/bash",
		User:           "lily",
		Home:           "/home/lily",
		PackageManager: "/usr/bin/apt",
	}
}

// fakeLauncher consults the GUI detector like the real launcher does and
// returns canned results in order.
type fakeLauncher struct {
	mu       sync.Mutex
	detector tactile.GUIDetector
	results  []*tactile.ExecutionResult
	commands []string
	sudo     []bool
	hook     func(ctx context.Context)
}

func (l *fakeLauncher) Launch(ctx context.Context, command string, useSudo bool) *tactile.ExecutionResult {
	if l.hook != nil {
		l.hook(ctx)
	}
	gui := false
	if l.detector != nil {
		gui = l.detector.IsGUI(ctx, command)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = append(l.commands, command)
	l.sudo = append(l.sudo, useSudo)

	var res tactile.ExecutionResult
	if len(l.results) > 0 {
		res = *l.results[0]
		if len(l.results) > 1 {
			l.results = l.results[1:]
		}
	}
	res.Command = command
	res.IsGUI = res.IsGUI || gui
	return &res
}

func (l *fakeLauncher) launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.commands...)
}

func exit(code int) *int { return &code }
