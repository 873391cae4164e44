// Command c8 executes CHIP-8 ROMs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

func main() {
	log.SetPrefix("c8: ")
	log.SetFlags(0)

	var (
		termFlag     = flag.Bool("term", false, "draw the display in the terminal instead of a window")
		headlessFlag = flag.Bool("headless", false, "run without a display and print the final screen and machine state")
		framesFlag   = flag.Int("frames", 60, "number of frames to run in headless mode")
		speedFlag    = flag.Int("speed", vip.DefaultSpeed, "instructions executed per frame")
		clipFlag     = flag.Bool("clip", false, "clip sprites at the screen edges instead of wrapping")
		pushRetFlag  = flag.Bool("push_return", false, "CALL pushes the return address rather than the call site")
		devFlag      = flag.Bool("dev", false, "enable developer mode (debugger, reload the ROM when it changes)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-term] [-speed n] [-clip] [-push_return] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -headless [-frames n] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -dev [-term] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	cfg := vip.Config{
		Speed:  *speedFlag,
		Clip:   *clipFlag,
		Quirks: chip8.Quirks{PushReturn: *pushRetFlag},
		Dev:    *devFlag,
	}

	if *devFlag {
		if err := devMode(flag.Arg(0), cfg, *termFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	var err error
	if *headlessFlag {
		err = runHeadless(os.Stdout, flag.Arg(0), cfg, *framesFlag)
	} else {
		err = run(flag.Arg(0), cfg, *termFlag)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func load(romFile string, cfg vip.Config) (*vip.VIP, error) {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return nil, err
	}
	v, err := vip.New(rom, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", romFile, err)
	}
	return v, nil
}

// run executes romFile in real time with a window or terminal frontend
// until the frontend is closed or the machine halts.
func run(romFile string, cfg vip.Config, term bool) error {
	v, err := load(romFile, cfg)
	if err != nil {
		return err
	}
	r := vip.NewRunner(cfg, nil)
	errc := make(chan error, 1)
	go func() { errc <- r.Run(v) }()

	if term {
		err = runTerm(r)
	} else {
		err = vip.NewGUI(r).Run()
	}
	if runErr := <-errc; runErr != nil {
		return runErr
	}
	return err
}

// runHeadless executes frames frames of romFile as fast as possible and
// writes the final display and machine state to w.
func runHeadless(w io.Writer, romFile string, cfg vip.Config, frames int) error {
	v, err := load(romFile, cfg)
	if err != nil {
		return err
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = vip.DefaultSpeed
	}
	for i := 0; i < frames && err == nil; i++ {
		err = v.Frame(speed)
	}
	fmt.Fprint(w, v.Screen().String())
	fmt.Fprint(w, v.Machine().String())
	return err
}
