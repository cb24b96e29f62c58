package imageprep

import "image"

// Histogram counts the pixels of g per intensity.
func Histogram(g *image.Gray) [256]int {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[(y-b.Min.Y)*g.Stride : (y-b.Min.Y)*g.Stride+b.Dx()]
		for _, p := range row {
			hist[p]++
		}
	}
	return hist
}

// OtsuThreshold picks the intensity t maximizing the between-class variance
// wB*wF*(mB-mF)^2 of the split {<=t, >t}. Ties keep the lowest t.
func OtsuThreshold(hist [256]int) int {
	var total, sumTotal float64
	for i, n := range hist {
		total += float64(n)
		sumTotal += float64(i) * float64(n)
	}

	var sumB, wB, varMax float64
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumTotal - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > varMax {
			varMax = between
			threshold = t
		}
	}
	return threshold
}

// Binarize maps pixels above threshold to white and the rest to black.
func Binarize(g *image.Gray, threshold int) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x, p := range src {
			if int(p) > threshold {
				dst[x] = 255
			}
		}
	}
	return out
}
