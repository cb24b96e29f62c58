package imageprep

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Rotate turns img clockwise by degrees, expanding the canvas. Only quarter
// turns are supported; ok is false (and img is returned) for other angles.
func Rotate(img image.Image, degrees int) (out image.Image, ok bool) {
	degrees = ((degrees % 360) + 360) % 360
	if degrees == 0 {
		return img, true
	}
	if degrees%90 != 0 {
		return img, false
	}
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(src, src.Bounds(), img, b.Min, xdraw.Src)
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch degrees {
			case 90:
				dx, dy = h-1-y, x
			case 180:
				dx, dy = w-1-x, h-1-y
			case 270:
				dx, dy = y, w-1-x
			}
			si := y*src.Stride + x*4
			di := dy*dst.Stride + dx*4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst, true
}
