package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/c8/vip"
)

// devMode runs romFile under the debugger, swapping in a fresh machine
// whenever the file changes. If term is set the display is drawn in the
// debugger, otherwise in a window.
func devMode(romFile string, cfg vip.Config, term bool) error {
	romFile = filepath.Clean(romFile)
	v, err := load(romFile, cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	debug := newDebugger(term)
	runner := vip.NewRunner(cfg, debug.StateFunc)
	debug.run = runner
	log.SetPrefix("")
	log.SetOutput(debug.log)
	go func() {
		if err := debug.Run(); err != nil {
			log.Fatalf("debug: %v", err)
		}
		log.SetOutput(os.Stderr)
		log.SetPrefix("c8: ")
		runner.Debug("exit", 0)
	}()
	defer debug.app.Stop()

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reload %s", filepath.Base(romFile))
				runner.Swap(rom)
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			case <-runner.Done():
				return
			}
		}
	}()

	log.Printf("dev: start %s", filepath.Base(romFile))
	if term {
		go func() {
			for {
				select {
				case f := <-runner.Frames():
					debug.setFrame(f)
				case <-runner.Done():
					return
				}
			}
		}()
		return runner.Run(v)
	}

	errc := make(chan error, 1)
	go func() { errc <- runner.Run(v) }()
	guiErr := vip.NewGUI(runner).Run()
	if err := <-errc; err != nil {
		return err
	}
	return guiErr
}
