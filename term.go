package main

import (
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/c8/vip"
)

// The terminal only reports key presses, relying on auto-repeat while a key
// is held. A key is released once no press has been seen for this long.
const releaseWindow = 150 * time.Millisecond

// runTerm draws the Runner's frames in the terminal and feeds it key
// presses until Escape or Ctrl-C is pressed or the Runner stops.
func runTerm(r *vip.Runner) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	defer r.Stop()

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-r.Done():
				return
			}
		}
	}()

	var (
		held    = map[byte]time.Time{}
		release = time.NewTicker(releaseWindow / 5)
	)
	defer release.Stop()
	for {
		select {
		case f := <-r.Frames():
			drawFrame(s, 0, 0, &f)
			s.Show()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.Sync()
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					k, ok := vip.KeyForRune(ev.Rune())
					if !ok {
						break
					}
					if _, down := held[k]; !down {
						r.SetKey(k, true)
					}
					held[k] = time.Now()
				}
			}

		case now := <-release.C:
			for k, t := range held {
				if now.Sub(t) > releaseWindow {
					r.SetKey(k, false)
					delete(held, k)
				}
			}

		case <-r.Done():
			return nil
		}
	}
}

var (
	offColor = tcellColor(vip.Palette[0])
	onColor  = tcellColor(vip.Palette[1])
)

func tcellColor(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// drawFrame draws f with its top left corner at (x0, y0), packing two
// pixel rows into each terminal cell.
func drawFrame(s tcell.Screen, x0, y0 int, f *vip.Frame) {
	for y := 0; y < vip.Height; y += 2 {
		for x := 0; x < vip.Width; x++ {
			st := tcell.StyleDefault.
				Foreground(pixelColor(f.Pixel(x, y))).
				Background(pixelColor(f.Pixel(x, y+1)))
			s.SetContent(x0+x, y0+y/2, '▀', nil, st)
		}
	}
}

func pixelColor(on bool) tcell.Color {
	if on {
		return onColor
	}
	return offColor
}
