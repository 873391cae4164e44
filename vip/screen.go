package vip

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/nf/c8/chip8"
)

const (
	Width  = chip8.DisplayWidth
	Height = chip8.DisplayHeight
)

// Screen is a 64x32 monochrome display buffer.
type Screen struct {
	// Clip makes sprites that cross an edge of the screen lose their
	// off-screen pixels instead of wrapping to the opposite edge.
	Clip bool

	px  Frame
	ops int // total count of draw operations
}

// Clear turns off every pixel.
func (s *Screen) Clear() {
	s.px = Frame{}
	s.ops++
}

// Set turns the pixel at (x, y) on or off.
func (s *Screen) Set(x, y int, on bool) error {
	if !inside(x, y) {
		return fmt.Errorf("pixel (%d, %d) outside %dx%d screen", x, y, Width, Height)
	}
	s.px[y*Width+x] = on
	s.ops++
	return nil
}

// Pixel reports whether the pixel at (x, y) is on.
func (s *Screen) Pixel(x, y int) (bool, error) {
	if !inside(x, y) {
		return false, fmt.Errorf("pixel (%d, %d) outside %dx%d screen", x, y, Width, Height)
	}
	return s.px[y*Width+x], nil
}

// DrawSprite XORs the bits of row into the eight pixels starting at (x, y),
// most significant bit leftmost, and reports whether any pixel went from
// on to off. Coordinates wrap around the screen unless s.Clip is set.
func (s *Screen) DrawSprite(x, y int, row byte) (collision bool) {
	if s.Clip && (y < 0 || y >= Height) {
		return false
	}
	y = wrap(y, Height)
	for i := 0; i < 8; i++ {
		if row&(0x80>>i) == 0 {
			continue
		}
		px := x + i
		if s.Clip && (px < 0 || px >= Width) {
			continue
		}
		p := &s.px[y*Width+wrap(px, Width)]
		if *p {
			collision = true
		}
		*p = !*p
	}
	s.ops++
	return collision
}

// Snapshot returns a copy of the current screen contents.
func (s *Screen) Snapshot() Frame { return s.px }

func (s *Screen) String() string { return s.px.String() }

func inside(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Frame holds the contents of a Screen, row-major.
type Frame [Width * Height]bool

// Pixel reports whether the pixel at (x, y) is on. Coordinates outside
// the frame are off.
func (f *Frame) Pixel(x, y int) bool {
	return inside(x, y) && f[y*Width+x]
}

// Palette holds the colors used by Image for off and on pixels.
var Palette = color.Palette{
	color.RGBA{0x10, 0x10, 0x18, 0xff},
	color.RGBA{0xe8, 0xe8, 0xd8, 0xff},
}

// Image returns the frame as a Width by Height image.
func (f *Frame) Image() *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, Width, Height), Palette)
	for i, on := range f {
		if on {
			m.Pix[i] = 1
		}
	}
	return m
}

// String renders the frame as text, one line per row, '#' for lit pixels.
func (f *Frame) String() string {
	var b strings.Builder
	b.Grow((Width + 1) * Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if f[y*Width+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
