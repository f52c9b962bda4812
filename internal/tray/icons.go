package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// IconState selects the tray icon.
type IconState int

const (
	IconUnknown IconState = iota
	IconOff
	IconOn
)

func (s IconState) String() string {
	switch s {
	case IconOn:
		return "on"
	case IconOff:
		return "off"
	default:
		return "unknown"
	}
}

const iconSize = 22

var (
	iconOn      = renderIcon(color.RGBA{R: 0xff, G: 0xc1, B: 0x4d, A: 0xff}, true)
	iconOff     = renderIcon(color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}, true)
	iconUnknown = renderIcon(color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}, false)
)

// Icon returns the PNG bytes for s.
func Icon(s IconState) []byte {
	switch s {
	case IconOn:
		return iconOn
	case IconOff:
		return iconOff
	default:
		return iconUnknown
	}
}

// renderIcon draws a key light panel: a rounded square, filled or as an
// outline.
func renderIcon(c color.RGBA, filled bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	const (
		inset  = 2
		radius = 4
		stroke = 2
	)
	lo, hi := inset, iconSize-inset-1
	for y := lo; y <= hi; y++ {
		for x := lo; x <= hi; x++ {
			if !insideRounded(x, y, lo, hi, radius) {
				continue
			}
			edge := x < lo+stroke || x > hi-stroke || y < lo+stroke || y > hi-stroke ||
				!insideRounded(x, y, lo+stroke, hi-stroke, radius-stroke)
			if filled || edge {
				img.Set(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func insideRounded(x, y, lo, hi, r int) bool {
	if x < lo || x > hi || y < lo || y > hi {
		return false
	}
	cx, cy := x, y
	switch {
	case x < lo+r:
		cx = lo + r
	case x > hi-r:
		cx = hi - r
	}
	switch {
	case y < lo+r:
		cy = lo + r
	case y > hi-r:
		cy = hi - r
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
