package imageprep

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// BoundedSize computes the size whose longest edge is clamped into
// [minDim, maxDim], preserving aspect ratio. ok is false when no resize is
// needed.
func BoundedSize(w, h, minDim, maxDim int) (nw, nh int, ok bool) {
	long := w
	if h > long {
		long = h
	}
	if long <= 0 {
		return w, h, false
	}
	var scale float64
	switch {
	case long < minDim:
		scale = float64(minDim) / float64(long)
	case long > maxDim:
		scale = float64(maxDim) / float64(long)
	default:
		return w, h, false
	}
	nw = max(1, int(float64(w)*scale))
	nh = max(1, int(float64(h)*scale))
	return nw, nh, true
}

// ResizeBounded scales g so its longest edge lies within [minDim, maxDim].
func ResizeBounded(g *image.Gray, minDim, maxDim int) *image.Gray {
	b := g.Bounds()
	nw, nh, ok := BoundedSize(b.Dx(), b.Dy(), minDim, maxDim)
	if !ok {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), g, b, xdraw.Src, nil)
	return dst
}

// Thumbnail shrinks img to fit inside maxW x maxH, preserving aspect ratio.
// Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH || w == 0 || h == 0 {
		return img
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
