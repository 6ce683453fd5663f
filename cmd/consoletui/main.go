// https://github.com/jarule/core
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command consoletui is a bubbletea dashboard over the same console
// command table cmd/dmxcored drives from a raw terminal: it wires an
// identical hostapi.Core but renders mode, timing, and receive
// counters continuously instead of requiring a `c`/`t` keystroke to
// see them, and keeps a scrolling log of console responses. Engine
// events only trigger a redraw; they are not logged.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jarule/core/coarsetimer"
	"github.com/jarule/core/console"
	"github.com/jarule/core/hardware/sim"
	"github.com/jarule/core/hostapi"
	"github.com/jarule/core/rdm"
	"github.com/jarule/core/responder"
	"github.com/jarule/core/transceiver"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

// ledSink is a trivial responder.LEDs for the TUI: no GPIO, just state
// the View reads back every tick.
type ledSink struct {
	identify bool
	mute     bool
}

func (l *ledSink) SetIdentify(on bool) { l.identify = on }
func (l *ledSink) SetMute(on bool)     { l.mute = on }

// model is the bubbletea state: a scrolling log viewport plus a
// reference to the wired core it polls every tick.
type model struct {
	core     *hostapi.Core
	leds     *ledSink
	log      viewport.Model
	logLines []string
	width    int
	height   int
	quitting bool
}

func newModel(core *hostapi.Core, leds *ledSink) model {
	vp := viewport.New(78, 14)
	vp.Style = logStyle
	return model{core: core, leds: leds, log: vp}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) appendLog(s string) model {
	for _, line := range bytesSplitLines(s) {
		if line == "" {
			continue
		}
		m.logLines = append(m.logLines, line)
	}
	if len(m.logLines) > 500 {
		m.logLines = m.logLines[len(m.logLines)-500:]
	}
	m.log.SetContent(joinLines(m.logLines))
	m.log.GotoBottom()
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		if len(msg.Runes) == 1 {
			var buf bytes.Buffer
			console.Dispatch(byte(msg.Runes[0]), m.core, &buf)
			if buf.Len() > 0 {
				m = m.appendLog(buf.String())
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.log.Width = msg.Width - 4
		if m.log.Width < 20 {
			m.log.Width = 20
		}
		m.log.Height = msg.Height - 8
		if m.log.Height < 5 {
			m.log.Height = 5
		}
		return m, nil
	case tickMsg:
		return m, tick()
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "dmxcored console detached.\n"
	}

	timing := m.core.Timing()
	snap := m.core.Counters()
	uid := m.core.Device().Root.UID

	header := headerStyle.Render(fmt.Sprintf("dmxcored console  mode=%s  uid=%s", m.core.Mode(), uid))
	stats := statStyle.Render(fmt.Sprintf(
		"dmx=%d rdm=%d short=%d len-mismatch=%d checksum-invalid=%d | break=%s mark=%s delay=%s | identify=%v mute-led=%v",
		snap.DMXFrames, snap.RDMFrames, snap.RDMShortFrame, snap.RDMLengthMismatch, snap.RDMChecksumInvalid,
		timing.BreakTime, timing.MarkTime, timing.ResponderDelay, m.leds.identify, m.leds.mute))

	help := helpStyle.Render("press a console command character (h for help), q to quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, stats, m.log.View(), help)
}

func bytesSplitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func joinLines(lines []string) string {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.String()
}

func main() {
	uidFlag := flag.String("uid", "7a70:00000001", "responder UID, manufacturer:device hex")
	flag.Parse()

	var mfr uint32
	var devID uint32
	if _, err := fmt.Sscanf(*uidFlag, "%04x:%08x", &mfr, &devID); err != nil {
		fmt.Fprintf(os.Stderr, "consoletui: invalid -uid %q: %v\n", *uidFlag, err)
		os.Exit(1)
	}
	uid := rdm.UID{Manufacturer: uint16(mfr), Device: devID}

	leds := &ledSink{}
	clock := &coarsetimer.Timer{}
	dev := responder.NewReferenceDevice(uid, nil, leds)

	var p *tea.Program
	core := hostapi.New(sim.NewLine(), clock, dev,
		func(ev transceiver.Event) {
			if p != nil {
				p.Send(tickMsg(time.Now()))
			}
			_ = ev
		},
		func([]byte) {
			if p != nil {
				p.Send(tickMsg(time.Now()))
			}
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := core.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("consoletui: engine stopped: %v", err)
		}
	}()

	p = tea.NewProgram(newModel(core, leds), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "consoletui: %v\n", err)
		os.Exit(1)
	}
}
