package imageprep

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Grayscale converts img to an 8-bit gray image anchored at the origin.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}

// AutoContrast stretches the intensity range of g to the full 0..255 span.
// Flat images are returned as a copy.
func AutoContrast(g *image.Gray) *image.Gray {
	hist := Histogram(g)
	lo, hi := 0, 255
	for lo < 256 && hist[lo] == 0 {
		lo++
	}
	for hi >= 0 && hist[hi] == 0 {
		hi--
	}
	out := cloneGray(g)
	if lo >= hi {
		return out
	}
	scale := 255.0 / float64(hi-lo)
	var lut [256]uint8
	for i := range lut {
		v := int(float64(i-lo)*scale + 0.5)
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		lut[i] = uint8(v)
	}
	for i, p := range out.Pix {
		out.Pix[i] = lut[p]
	}
	return out
}

// Median3 applies a 3x3 median filter, replicating edge pixels.
func Median3(g *image.Gray) *image.Gray {
	src := cloneGray(g)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	var win [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				yy := clamp(y+dy, 0, h-1)
				for dx := -1; dx <= 1; dx++ {
					xx := clamp(x+dx, 0, w-1)
					win[n] = src.Pix[yy*src.Stride+xx]
					n++
				}
			}
			out.Pix[y*out.Stride+x] = median9(&win)
		}
	}
	return out
}

func median9(v *[9]uint8) uint8 {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
	return v[4]
}

func cloneGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[y*g.Stride:y*g.Stride+b.Dx()])
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
