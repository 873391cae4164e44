package vip

import (
	"image"
	"image/draw"
	"log"

	xdraw "golang.org/x/image/draw"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// GUI shows a Runner's frames in a window and feeds its keyboard to the
// Runner's keypad.
type GUI struct {
	r     *Runner
	frame Frame
	buf   screen.Buffer
}

func NewGUI(r *Runner) *GUI {
	return &GUI{r: r}
}

// Run opens the window and handles its events until the window is closed,
// Escape is pressed, or the Runner stops. It stops the Runner before
// returning. Run must be called from the main goroutine.
func (g *GUI) Run() error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  "c8",
			Width:  Width * 10,
			Height: Height * 10,
		})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()
		defer g.release()
		defer g.r.Stop()

		type stopped struct{}
		go func() {
			for {
				select {
				case f := <-g.r.Frames():
					w.Send(f)
				case <-g.r.Done():
					w.Send(stopped{})
					return
				}
			}
		}()

		var sz size.Event
		for {
			switch e := w.NextEvent().(type) {
			case stopped:
				return

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				if k, ok := KeyForRune(e.Rune); ok {
					g.r.SetKey(k, e.Direction != key.DirRelease)
				}

			case Frame:
				g.frame = e
				w.Send(paint.Event{})

			case paint.Event:
				if err := g.paint(s, w, sz); err != nil {
					log.Printf("gui: %v", err)
					runErr = err
					return
				}

			case error:
				log.Print(e)
			}
		}
	})
	return runErr
}

// paint scales the current frame to the window size and publishes it.
func (g *GUI) paint(s screen.Screen, w screen.Window, sz size.Event) error {
	dim := sz.Size()
	if dim.X == 0 || dim.Y == 0 {
		return nil
	}
	if g.buf == nil || g.buf.Size() != dim {
		g.release()
		var err error
		if g.buf, err = s.NewBuffer(dim); err != nil {
			return err
		}
	}
	src := g.frame.Image()
	xdraw.NearestNeighbor.Scale(g.buf.RGBA(), g.buf.Bounds(), src, src.Bounds(), draw.Src, nil)
	w.Upload(image.Point{}, g.buf, g.buf.Bounds())
	w.Publish()
	return nil
}

func (g *GUI) release() {
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
