package vip

import (
	"errors"
	"testing"
	"time"

	"github.com/nf/c8/chip8"
)

func rom(ops ...uint16) []byte {
	b := make([]byte, 0, 2*len(ops))
	for _, op := range ops {
		b = append(b, byte(op>>8), byte(op))
	}
	return b
}

func newVIP(t *testing.T, c Config, ops ...uint16) *VIP {
	t.Helper()
	v, err := New(rom(ops...), c)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNewTooLarge(t *testing.T) {
	_, err := New(make([]byte, chip8.MaxProgramSize+1), Config{})
	if !errors.Is(err, chip8.ErrProgramTooLarge) {
		t.Errorf("New returned %v, want ErrProgramTooLarge", err)
	}
}

func TestFrame(t *testing.T) {
	v := newVIP(t, Config{},
		0x603c, // LD V0, 60
		0xf015, // LD DT, V0
		0x1204, // JP 204
	)
	if err := v.Frame(DefaultSpeed); err != nil {
		t.Fatal(err)
	}
	m := v.Machine()
	if m.DT != 59 || m.PC != 0x204 {
		t.Errorf("DT %d PC %.4x after one frame, want DT 59 PC 0204", m.DT, m.PC)
	}
	for i := 0; i < 100; i++ {
		if err := v.Frame(DefaultSpeed); err != nil {
			t.Fatal(err)
		}
	}
	if m.DT != 0 {
		t.Errorf("DT %d after 101 frames, want 0", m.DT)
	}
}

func TestFrameHalt(t *testing.T) {
	v := newVIP(t, Config{},
		0x6005, // LD V0, 5
		0xf015, // LD DT, V0
		0x0000,
	)
	err := v.Frame(DefaultSpeed)
	want := chip8.HaltError{HaltCode: chip8.UnknownOp, Addr: 0x204}
	if err != want {
		t.Fatalf("got error %v, want %v", err, want)
	}
	if m := v.Machine(); m.DT != 5 || m.PC != 0x204 {
		t.Errorf("DT %d PC %.4x after halt, want DT 5 PC 0204", m.DT, m.PC)
	}
}

func TestDrawCollision(t *testing.T) {
	for _, clip := range []bool{false, true} {
		v := newVIP(t, Config{Clip: clip},
			0xa20a, // LD I, 20a
			0x603e, // LD V0, 62
			0x6110, // LD V1, 16
			0xd011, // DRW V0, V1, 1
			0x1208, // JP 208
			0xff00, // sprite
		)
		if err := v.Frame(4); err != nil {
			t.Fatal(err)
		}
		m := v.Machine()
		if m.V[0xf] != 0 {
			t.Errorf("clip %v: VF %d after first draw, want 0", clip, m.V[0xf])
		}
		if on, _ := v.Screen().Pixel(1, 16); on == clip {
			t.Errorf("clip %v: wrapped pixel (1, 16) is %v", clip, on)
		}
		m.PC = 0x206
		if err := v.Frame(1); err != nil {
			t.Fatal(err)
		}
		if m.V[0xf] != 1 {
			t.Errorf("clip %v: VF %d after second draw, want 1", clip, m.V[0xf])
		}
		if f := v.Screen().Snapshot(); f != (Frame{}) {
			t.Errorf("clip %v: screen not clear after second draw:\n%s", clip, f.String())
		}
	}
}

func TestKeyWait(t *testing.T) {
	v := newVIP(t, Config{},
		0xf30a, // LD V3, K
		0xe3a1, // SKNP V3
		0x1204, // JP 204
		0x1206, // JP 206
	)
	for i := 0; i < 3; i++ {
		if err := v.Frame(DefaultSpeed); err != nil {
			t.Fatal(err)
		}
	}
	if m := v.Machine(); m.PC != 0x200 {
		t.Fatalf("PC %.4x while waiting for a key, want 0200", m.PC)
	}
	v.Keypad().Set(0xe, true)
	if err := v.Frame(3); err != nil {
		t.Fatal(err)
	}
	if m := v.Machine(); m.V[3] != 0xe || m.PC != 0x204 {
		t.Errorf("V3 %#x PC %.4x, want V3 0xe PC 0204", m.V[3], m.PC)
	}
}

func TestReset(t *testing.T) {
	v := newVIP(t, Config{}, 0x6107, 0x00e0, 0x1204)
	v.Frame(DefaultSpeed)
	v.Screen().Set(1, 1, true)
	v.Keypad().Set(3, true)
	v.Reset()
	m := v.Machine()
	if m.PC != chip8.ProgramStart || m.V[1] != 0 {
		t.Errorf("PC %.4x V1 %d after Reset", m.PC, m.V[1])
	}
	if f := v.Screen().Snapshot(); f != (Frame{}) {
		t.Errorf("screen not clear after Reset")
	}
	if _, ok := v.Keypad().Any(); ok {
		t.Errorf("key pressed after Reset")
	}
	if m.Mem[0x200] != 0x61 || m.Mem[0x201] != 0x07 {
		t.Errorf("program not in memory after Reset")
	}
}

func TestRunnerHalt(t *testing.T) {
	v := newVIP(t, Config{},
		0xf00a, // LD V0, K
		0x0000,
	)
	r := NewRunner(Config{}, nil)
	errc := make(chan error)
	go func() { errc <- r.Run(v) }()
	r.SetKey(0x5, true)
	select {
	case err := <-errc:
		want := chip8.HaltError{HaltCode: chip8.UnknownOp, Addr: 0x202}
		if err != want {
			t.Errorf("Run returned %v, want %v", err, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not halt")
	}
	if v.Machine().V[0] != 0x5 {
		t.Errorf("V0 is %#x, want 0x5", v.Machine().V[0])
	}
	select {
	case <-r.Done():
	default:
		t.Errorf("Done not closed after Run returned")
	}
}

func TestRunnerFrames(t *testing.T) {
	v := newVIP(t, Config{},
		0xa206, // LD I, 206
		0xd001, // DRW V0, V0, 1
		0x1204, // JP 204
		0x8000, // sprite
	)
	r := NewRunner(Config{}, nil)
	errc := make(chan error)
	go func() { errc <- r.Run(v) }()
	select {
	case f := <-r.Frames():
		if !f.Pixel(0, 0) {
			t.Errorf("pixel (0, 0) off in first frame")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no frame published")
	}
	r.Stop()
	if err := <-errc; err != nil {
		t.Errorf("Run returned %v after Stop", err)
	}
}

type stateRecord struct {
	kind StateKind
	pc   uint16
}

func recordStates(states chan<- stateRecord) StateFunc {
	return func(m *chip8.Machine, k StateKind) {
		if k != QuietState {
			states <- stateRecord{k, m.PC}
		}
	}
}

func nextState(t *testing.T, states <-chan stateRecord) stateRecord {
	t.Helper()
	select {
	case s := <-states:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for state")
		return stateRecord{}
	}
}

func TestRunnerDebug(t *testing.T) {
	states := make(chan stateRecord, 10)
	c := Config{Dev: true}
	r := NewRunner(c, recordStates(states))
	v := newVIP(t, c,
		0x6101, // LD V1, 1
		0x1202, // JP 202
	)
	errc := make(chan error)
	go func() { errc <- r.Run(v) }()

	r.Debug("b", 0x202)
	for i, want := range []stateRecord{
		{BreakState, 0x202},
		{PauseState, 0x202},
		{ClearState, 0x202},
		{BreakState, 0x202},
		{ClearState, 0x200},
	} {
		if got := nextState(t, states); got != want {
			t.Fatalf("state %d is %+v, want %+v", i, got, want)
		}
		switch i {
		case 0:
			r.Debug("s", 0)
		case 1:
			r.Debug("c", 0)
		case 3:
			r.Debug("r", 0)
		}
	}
	r.Debug("exit", 0)
	if err := <-errc; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRunnerSwap(t *testing.T) {
	states := make(chan stateRecord, 10)
	c := Config{Dev: true}
	r := NewRunner(c, recordStates(states))
	v := newVIP(t, c, 0x1200)
	errc := make(chan error)
	go func() { errc <- r.Run(v) }()

	r.Swap(rom(0x6001, 0x0000))
	if got, want := nextState(t, states), (stateRecord{ClearState, 0x200}); got != want {
		t.Fatalf("after swap: state %+v, want %+v", got, want)
	}
	if got, want := nextState(t, states), (stateRecord{HaltState, 0x202}); got != want {
		t.Fatalf("after halt: state %+v, want %+v", got, want)
	}
	r.Stop()
	if err := <-errc; err != nil {
		t.Errorf("Run returned %v in dev mode", err)
	}
}
