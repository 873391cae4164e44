package vip

import (
	"log"
	"strings"
	"time"

	"github.com/nf/c8/chip8"
)

// FrameRate is the number of frames per second, and the rate at which the
// delay timer counts down.
const FrameRate = 60

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // running normally after a reset or continue
	QuietState                  // end of frame; refresh passive views only
	BreakState                  // stopped at a breakpoint
	PauseState                  // paused or single-stepped by the user
	HaltState                   // stopped by an error
)

// StateFunc is called by the Runner, from the goroutine executing the
// machine, whenever its state is of interest to a debugger. It must not
// retain m.
type StateFunc func(m *chip8.Machine, k StateKind)

// KeyEvent reports a change to the state of a keypad key.
type KeyEvent struct {
	Key     byte
	Pressed bool
}

type debugCmd struct {
	cmd  string
	addr uint16
}

// Runner drives a VIP in real time. Key events, ROM swaps and debugger
// commands are applied by the running goroutine between frames, so the
// machine only ever has one writer.
type Runner struct {
	cfg   Config
	state StateFunc

	keys   chan KeyEvent
	swap   chan []byte
	debug  chan debugCmd
	frames chan Frame
	stop   chan bool
	done   chan bool
}

// NewRunner returns a Runner for the given configuration.
// If state is nil, state changes are not reported.
func NewRunner(c Config, state StateFunc) *Runner {
	if state == nil {
		state = func(*chip8.Machine, StateKind) {}
	}
	return &Runner{
		cfg:    c,
		state:  state,
		keys:   make(chan KeyEvent),
		swap:   make(chan []byte),
		debug:  make(chan debugCmd),
		frames: make(chan Frame, 1),
		stop:   make(chan bool),
		done:   make(chan bool),
	}
}

// Frames returns the channel on which the screen contents are published
// after each frame that changed them. Stale frames are discarded if the
// receiver falls behind.
func (r *Runner) Frames() <-chan Frame { return r.frames }

// Done returns a channel that is closed when Run returns.
func (r *Runner) Done() <-chan bool { return r.done }

// SetKey presses or releases a keypad key.
func (r *Runner) SetKey(key byte, pressed bool) {
	select {
	case r.keys <- KeyEvent{key, pressed}:
	case <-r.done:
	}
}

// Swap replaces the running machine with a new one running rom.
// It may only be used in developer mode.
func (r *Runner) Swap(rom []byte) {
	if !r.cfg.Dev {
		panic("Swap called while not running in dev mode")
	}
	select {
	case r.swap <- rom:
	case <-r.done:
	}
}

// Debug sends a debugger command to the running machine:
//
//	b     clear the breakpoint
//	b     (with addr) break before executing the instruction at addr
//	p     pause
//	c     continue
//	s     execute one instruction while paused
//	r     reset the machine
//	k     press key addr
//	kr    release all keys
//	exit  stop running
func (r *Runner) Debug(cmd string, addr uint16) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

// Stop makes Run return.
func (r *Runner) Stop() {
	select {
	case r.stop <- true:
	case <-r.done:
	}
}

// Run drives v until Stop is called or, outside developer mode, the
// machine halts; the halt error is returned.
func (r *Runner) Run(v *VIP) error {
	defer close(r.done)

	t := time.NewTicker(time.Second / FrameRate)
	defer t.Stop()

	var (
		paused  bool
		brk     = -1 // breakpoint address
		resumed bool // skip the breakpoint once after continuing from it
		lastOps = -1
	)
	for {
		select {
		case <-t.C:
			if !paused {
				kind, err := r.frame(v, brk, resumed)
				resumed = false
				switch {
				case err != nil:
					return err
				case kind != ClearState:
					paused = true
					r.state(v.m, kind)
				default:
					r.state(v.m, QuietState)
				}
			}
			if v.scr.ops != lastOps {
				lastOps = v.scr.ops
				r.publish(v.scr.Snapshot())
			}

		case e := <-r.keys:
			if err := v.keys.Set(e.Key, e.Pressed); err != nil {
				log.Printf("vip: %v", err)
			}

		case rom := <-r.swap:
			nv, err := New(rom, r.cfg)
			if err != nil {
				log.Printf("vip: %v", err)
				continue
			}
			v, paused, resumed, lastOps = nv, false, false, -1
			r.state(v.m, ClearState)

		case c := <-r.debug:
			switch c.cmd {
			case "exit":
				return nil
			case "b", "break":
				if c.addr == 0 {
					brk = -1
				} else {
					brk = int(c.addr)
				}
			case "p", "pause":
				paused = true
				r.state(v.m, PauseState)
			case "c", "continue":
				if paused {
					paused, resumed = false, true
					r.state(v.m, ClearState)
				}
			case "s", "step":
				if !paused {
					break
				}
				if err := v.Step(); err != nil {
					log.Printf("vip: %v", err)
					r.state(v.m, HaltState)
					break
				}
				r.state(v.m, PauseState)
			case "r", "reset":
				v.Reset()
				paused, resumed = false, false
				r.state(v.m, ClearState)
			case "k", "key":
				if c.addr > 0xff {
					log.Printf("vip: no key %#x", c.addr)
				} else if err := v.keys.Set(byte(c.addr), true); err != nil {
					log.Printf("vip: %v", err)
				}
			case "kr":
				v.keys.Reset()
			default:
				log.Printf("vip: unknown debug command %q (try: %s)", c.cmd, strings.Join(debugCmds, " "))
			}

		case <-r.stop:
			return nil
		}
	}
}

var debugCmds = []string{"b", "p", "c", "s", "r", "k", "kr", "exit"}

// frame executes one frame's worth of instructions and ticks the delay
// timer. It reports BreakState or, in developer mode, HaltState if
// execution stopped early, and ClearState otherwise.
func (r *Runner) frame(v *VIP, brk int, resumed bool) (StateKind, error) {
	for i := 0; i < r.cfg.speed(); i++ {
		if int(v.m.PC) == brk && !(resumed && i == 0) {
			return BreakState, nil
		}
		if err := v.Step(); err != nil {
			if !r.cfg.Dev {
				return ClearState, err
			}
			log.Printf("vip: %v", err)
			return HaltState, nil
		}
	}
	v.m.TickTimer()
	return ClearState, nil
}

func (r *Runner) publish(f Frame) {
	select {
	case <-r.frames:
	default:
	}
	r.frames <- f
}
