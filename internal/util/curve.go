package util

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateArc is returned when no circular arc fits the requested curve
var ErrDegenerateArc = errors.New("degenerate arc: width and sagitta must be positive")

// CurveHandle receives every curved vertex with its index and the vertex count
type CurveHandle func(pos mgl32.Vec3, i, total int)

// Arc describes the circle a grid was bent onto, in the grid's XZ plane
// (Y of the arc plane maps to -Z of the grid).
type Arc struct {
	Center mgl64.Vec2
	Radius float64
	Angle  float64 // total subtended angle
}

// FitArc finds the circle through both chord ends of a chord of length width
// and the apex raised by sagitta above the chord midpoint.
func FitArc(width, sagitta float64) (Arc, error) {
	if !(width > 0) || !(sagitta > 0) || math.IsInf(width, 0) || math.IsInf(sagitta, 0) {
		return Arc{}, ErrDegenerateArc
	}

	half := width * 0.5
	a := mgl64.Vec2{-half, 0}
	b := mgl64.Vec2{0, sagitta}
	c := mgl64.Vec2{half, 0}

	ab := a.Sub(b)
	bc := b.Sub(c)
	ac := a.Sub(c)

	cross := ab[0]*ac[1] - ab[1]*ac[0]
	radius := (ab.Len() * bc.Len() * ac.Len()) / (2 * math.Abs(cross))

	center := mgl64.Vec2{0, sagitta - radius}
	base := a.Sub(center)
	halfAngle := math.Atan2(base[1], base[0]) - math.Pi*0.5

	return Arc{Center: center, Radius: radius, Angle: halfAngle * 2}, nil
}

// Point returns the arc position for a normalized horizontal coordinate u,
// where u = 0 is the left chord end and u = 1 the right one.
func (arc Arc) Point(u float64) mgl64.Vec2 {
	right := mgl64.Vec2{arc.Center[0] + math.Sin(arc.Angle*0.5)*arc.Radius, 0}
	return rotateAround(right, arc.Center, arc.Angle*(1-u))
}

// CurvePlane bends a flat grid of the given width onto a circular arc with the
// given sagitta. Each vertex keeps its Y, takes X from the arc, and the arc's
// height becomes -Z. uvs supply the normalized horizontal coordinate.
// handle, when set, sees every final position. The transform is meant to be
// applied once to a flat grid.
func CurvePlane(width float64, positions []mgl32.Vec3, uvs []mgl32.Vec2, sagitta float64, handle CurveHandle) (Arc, error) {
	if len(uvs) < len(positions) {
		return Arc{}, errors.New("curve plane: fewer uvs than positions")
	}

	arc, err := FitArc(width, sagitta)
	if err != nil {
		return Arc{}, err
	}

	right := mgl64.Vec2{width * 0.5, 0}
	total := len(positions)

	for i := range positions {
		ratio := 1 - float64(uvs[i][0])
		p := rotateAround(right, arc.Center, arc.Angle*ratio)

		positions[i] = mgl32.Vec3{float32(p[0]), positions[i][1], float32(-p[1])}

		if handle != nil {
			handle(positions[i], i, total)
		}
	}

	return arc, nil
}

func rotateAround(p, center mgl64.Vec2, angle float64) mgl64.Vec2 {
	s, c := math.Sincos(angle)
	x := p[0] - center[0]
	y := p[1] - center[1]
	return mgl64.Vec2{x*c - y*s + center[0], x*s + y*c + center[1]}
}
