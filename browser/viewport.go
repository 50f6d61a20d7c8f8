package browser

import (
	"github.com/go-rod/rod"
	"github.com/pkg/errors"
)

// box is an element's bounding rectangle in viewport coordinates.
type box struct {
	left, top, right, bottom float64
}

func (b box) height() float64 { return b.bottom - b.top }

// boundingBox computes the rectangle covering all content quads of an
// element. Elements without geometry (display:none, detached) yield an error.
func boundingBox(el *rod.Element) (box, error) {
	shape, err := el.Shape()
	if err != nil {
		return box{}, errors.Wrap(err, "element shape")
	}
	if len(shape.Quads) == 0 {
		return box{}, errors.New("element has no geometry")
	}
	b := box{left: 1e18, top: 1e18, right: -1e18, bottom: -1e18}
	for _, quad := range shape.Quads {
		for i := 0; i+1 < len(quad); i += 2 {
			x, y := quad[i], quad[i+1]
			if x < b.left {
				b.left = x
			}
			if x > b.right {
				b.right = x
			}
			if y < b.top {
				b.top = y
			}
			if y > b.bottom {
				b.bottom = y
			}
		}
	}
	return b, nil
}

// viewportSize returns the window's inner dimensions.
func viewportSize(page *rod.Page) (w, h float64, err error) {
	res, err := page.Eval(`() => [window.innerWidth, window.innerHeight]`)
	if err != nil {
		return 0, 0, errors.Wrap(err, "viewport size")
	}
	arr := res.Value.Arr()
	if len(arr) != 2 {
		return 0, 0, errors.New("unexpected viewport result")
	}
	return arr[0].Num(), arr[1].Num(), nil
}

// intersectsViewport reports whether any part of the box is on screen.
func intersectsViewport(b box, vw, vh float64) bool {
	return b.bottom > 0 && b.top < vh && b.right > 0 && b.left < vw
}
