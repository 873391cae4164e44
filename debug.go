package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

type debugger struct {
	run *vip.Runner

	log     *tview.TextView
	regs    *tview.TextView
	state   *tview.TextView
	display *tview.Box // nil unless the display is drawn in the terminal
	input   *tview.InputField
	cols    *tview.Flex
	rows    *tview.Flex
	app     *tview.Application

	mu    sync.Mutex
	brk   int // -1 if unset
	frame vip.Frame
}

var commands = []string{"b", "p", "c", "s", "r", "k", "kr", "exit"}

func newDebugger(display bool) *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		regs: tview.NewTextView().
			SetWrap(false),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
		brk: -1,
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.regs.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.regs, 30, 0, false).
		AddItem(d.log, 0, 1, false)
	if display {
		d.display = tview.NewBox()
		d.display.SetDrawFunc(d.drawDisplay)
		d.rows.AddItem(d.display, vip.Height/2, 0, false)
	}
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 2, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return
		}
		for _, c := range commands {
			if strings.HasPrefix(c, t) && c != t {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := d.input.GetText()
		if line == "" {
			return
		}
		d.input.SetText("")
		if line == "exit" {
			d.app.Stop()
			return
		}
		cmd, arg, err := parseCommand(line)
		if err != nil {
			log.Print(err)
			return
		}
		d.run.Debug(cmd, arg)
		switch cmd {
		case "b":
			d.mu.Lock()
			if arg == 0 {
				d.brk = -1
				log.Print("cleared break")
			} else {
				d.brk = int(arg)
				log.Printf("set break %.4x", arg)
			}
			d.mu.Unlock()
		case "k":
			log.Printf("pressed key %x", arg)
		case "kr":
			log.Print("released keys")
		}
	})
	return d
}

// parseCommand splits a debugger command line into a command and its
// hexadecimal argument.
func parseCommand(line string) (cmd string, arg uint16, err error) {
	cmd, s, ok := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "break":
		cmd = "b"
	case "key":
		cmd = "k"
	}
	if !ok {
		if cmd == "k" {
			return "", 0, fmt.Errorf("k: missing key")
		}
		return cmd, 0, nil
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	switch cmd {
	case "b":
		n, err := strconv.ParseUint(s, 16, 16)
		if err != nil || n >= chip8.MemSize {
			return "", 0, fmt.Errorf("invalid addr %q", s)
		}
		return cmd, uint16(n), nil
	case "k":
		n, err := strconv.ParseUint(s, 16, 8)
		if err != nil || n >= chip8.NumKeys {
			return "", 0, fmt.Errorf("invalid key %q", s)
		}
		return cmd, uint16(n), nil
	}
	return "", 0, fmt.Errorf("%s takes no argument", cmd)
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) StateFunc(m *chip8.Machine, k vip.StateKind) {
	var (
		regs  = m.String()
		state string
	)
	if k != vip.QuietState {
		d.mu.Lock()
		brk := d.brk
		d.mu.Unlock()
		state = stateMsg(m, k, brk)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case vip.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case vip.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case vip.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case vip.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.regs.SetText(regs)
		if k != vip.QuietState {
			d.state.SetText(state)
		}
	})
}

// stateMsg describes the instruction about to execute.
func stateMsg(m *chip8.Machine, k vip.StateKind, brk int) string {
	ins := "----"
	if op, err := m.Fetch(); err == nil {
		ins = fmt.Sprintf("%.4x  %s", uint16(op), op)
	}
	kind := "       "
	switch k {
	case vip.BreakState:
		kind = "[break]"
	case vip.PauseState:
		kind = "[pause]"
	case vip.HaltState:
		kind = "[HALT!]"
	}
	b := "none"
	if brk >= 0 {
		b = fmt.Sprintf("%.4x", brk)
	}
	return fmt.Sprintf("%.4x %s %-20s break: %s\nrs: %s\n",
		m.PC, kind, ins, b, m.StackString())
}

// setFrame replaces the frame shown in the display pane.
func (d *debugger) setFrame(f vip.Frame) {
	d.mu.Lock()
	d.frame = f
	d.mu.Unlock()
	d.app.QueueUpdateDraw(func() {})
}

func (d *debugger) drawDisplay(s tcell.Screen, x, y, w, h int) (int, int, int, int) {
	d.mu.Lock()
	f := d.frame
	d.mu.Unlock()
	drawFrame(s, x, y, &f)
	return x, y, w, h
}
