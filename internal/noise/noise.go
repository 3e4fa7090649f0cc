package noise

import (
	"math"
)

// Generator produces deterministic gradient noise for a fixed seed
type Generator struct {
	seed int
}

// NewGenerator creates a noise generator with the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: int(seed)}
}

// Perlin2D samples 2D Perlin noise, roughly in [-1, 1]
func (g *Generator) Perlin2D(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	x1 := x0 + 1.0
	y1 := y0 + 1.0

	sx := fade(x - x0)
	sy := fade(y - y0)

	g00 := gradient2D(hash(int(x0), int(y0), g.seed))
	g10 := gradient2D(hash(int(x1), int(y0), g.seed))
	g01 := gradient2D(hash(int(x0), int(y1), g.seed))
	g11 := gradient2D(hash(int(x1), int(y1), g.seed))

	d00 := g00[0]*(x-x0) + g00[1]*(y-y0)
	d10 := g10[0]*(x-x1) + g10[1]*(y-y0)
	d01 := g01[0]*(x-x0) + g01[1]*(y-y1)
	d11 := g11[0]*(x-x1) + g11[1]*(y-y1)

	return lerp(lerp(d00, d10, sx), lerp(d01, d11, sx), sy)
}

// FBM2D sums octaves of Perlin noise and normalizes by the total amplitude
func (g *Generator) FBM2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves < 1 {
		return 0
	}

	result := 0.0
	amplitude := 1.0
	frequency := 1.0
	total := 0.0

	for i := 0; i < octaves; i++ {
		octave := &Generator{seed: g.seed + i}
		result += octave.Perlin2D(x*frequency, y*frequency) * amplitude
		total += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}

	return result / total
}

// Field fills a width*height grid with FBM noise remapped into [0, 1].
// scale is the number of noise cells across the grid.
func (g *Generator) Field(width, height int, scale float64, octaves int) []float64 {
	if width <= 0 || height <= 0 {
		return nil
	}

	field := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := g.FBM2D(float64(x)/float64(width)*scale, float64(y)/float64(height)*scale, octaves, 2.0, 0.5)
			field[y*width+x] = clamp01(n*0.5 + 0.5)
		}
	}

	return field
}

func hash(x, y, seed int) int {
	h := seed + x*374761393 + y*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func gradient2D(h int) [2]float64 {
	switch h & 7 {
	case 0:
		return [2]float64{1, 0}
	case 1:
		return [2]float64{-1, 0}
	case 2:
		return [2]float64{0, 1}
	case 3:
		return [2]float64{0, -1}
	case 4:
		return [2]float64{1, 1}
	case 5:
		return [2]float64{-1, 1}
	case 6:
		return [2]float64{1, -1}
	default:
		return [2]float64{-1, -1}
	}
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// fade is the improved Perlin curve 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
