// Package articulation is the presentation boundary: everything the engine
// wants the user to hear or read goes through a Narrator.
package articulation

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tone colors a narration line.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneWarning
	ToneError
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneWarning:
		return "warning"
	case ToneError:
		return "error"
	default:
		return "info"
	}
}

// Narrator receives user-facing progress from the engine.
type Narrator interface {
	// Say is primary narration, the lines a voice front-end would speak.
	Say(tone Tone, msg string)
	// Note is console-only detail such as output excerpts.
	Note(msg string)
}

// Palette
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	colorError   = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#6d28d9", Dark: "#c4b5fd"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
)

// ConsoleNarrator writes styled narration to a terminal.
type ConsoleNarrator struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Tone]lipgloss.Style
	note   lipgloss.Style
}

// NewConsoleNarrator creates a narrator writing to out.
func NewConsoleNarrator(out io.Writer) *ConsoleNarrator {
	return &ConsoleNarrator{
		out: out,
		styles: map[Tone]lipgloss.Style{
			ToneInfo:    lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
			ToneSuccess: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
			ToneWarning: lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
			ToneError:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
		},
		note: lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorMuted),
	}
}

func (c *ConsoleNarrator) Say(tone Tone, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.styles[tone].Render(msg))
}

func (c *ConsoleNarrator) Note(msg string) {
	msg = strings.TrimRight(msg, "\n")
	if msg == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.note.Render(msg))
}

// Line is one recorded narration event.
type Line struct {
	Spoken bool
	Tone   Tone
	Text   string
}

// Recorder is a Narrator that keeps everything in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *Recorder) Say(tone Tone, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Spoken: true, Tone: tone, Text: msg})
}

func (r *Recorder) Note(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Tone: ToneInfo, Text: msg})
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Line(nil), r.lines...)
}

// Spoken returns the text of every Say call, in order.
func (r *Recorder) Spoken() []string {
	var out []string
	for _, l := range r.Lines() {
		if l.Spoken {
			out = append(out, l.Text)
		}
	}
	return out
}

// Discard drops all narration.
type Discard struct{}

func (Discard) Say(Tone, string) {}
func (Discard) Note(string)      {}
