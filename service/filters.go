package service

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

var sepiaMatrix = [3][3]float64{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

func applyFilter(img image.Image, filter string) image.Image {
	switch filter {
	case FilterGrayscale:
		return imaging.Grayscale(img)
	case FilterSepia:
		return recomb(img, sepiaMatrix)
	case FilterInvert:
		return imaging.Invert(img)
	case FilterBlur:
		return imaging.Blur(img, 3)
	case FilterSharpen:
		return imaging.Sharpen(img, 1)
	case FilterWarm:
		return tint(modulate(img, 1, 1.2), color.NRGBA{R: 255, G: 200, B: 150, A: 255})
	case FilterCool:
		return tint(modulate(img, 1, 1.1), color.NRGBA{R: 150, G: 200, B: 255, A: 255})
	case FilterVivid:
		return modulate(img, 1.1, 1.5)
	}
	return img
}

// modulate 以倍数调整亮度与饱和度
func modulate(img image.Image, brightness, saturation float64) *image.NRGBA {
	out := imaging.Clone(img)
	if saturation != 1 {
		pct := math.Max(-100, math.Min(500, (saturation-1)*100))
		out = imaging.AdjustSaturation(out, pct)
	}
	if brightness != 1 {
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: clamp8(float64(c.R) * brightness),
				G: clamp8(float64(c.G) * brightness),
				B: clamp8(float64(c.B) * brightness),
				A: c.A,
			}
		})
	}
	return out
}

// tint 保留亮度，把色度替换为给定颜色
func tint(img image.Image, t color.NRGBA) *image.NRGBA {
	tl := luma(t.R, t.G, t.B)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		y := luma(c.R, c.G, c.B)
		return color.NRGBA{
			R: clamp8(y * float64(t.R) / tl),
			G: clamp8(y * float64(t.G) / tl),
			B: clamp8(y * float64(t.B) / tl),
			A: c.A,
		}
	})
}

func recomb(img image.Image, m [3][3]float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		return color.NRGBA{
			R: clamp8(m[0][0]*r + m[0][1]*g + m[0][2]*b),
			G: clamp8(m[1][0]*r + m[1][1]*g + m[1][2]*b),
			B: clamp8(m[2][0]*r + m[2][1]*g + m[2][2]*b),
			A: c.A,
		}
	})
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
