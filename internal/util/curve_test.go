package util

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// flatRow returns nx vertices spread across width at height y with matching uvs
func flatRow(width float32, nx int, y float32) ([]mgl32.Vec3, []mgl32.Vec2) {
	pos := make([]mgl32.Vec3, nx)
	uvs := make([]mgl32.Vec2, nx)
	for i := 0; i < nx; i++ {
		u := float32(i) / float32(nx-1)
		pos[i] = mgl32.Vec3{-width/2 + u*width, y, 0}
		uvs[i] = mgl32.Vec2{u, 0.5}
	}
	return pos, uvs
}

func TestCurvePlane_ChordAndApex(t *testing.T) {
	const width, sagitta = 300.0, 55.0
	pos, uvs := flatRow(width, 11, 4)

	if _, err := CurvePlane(width, pos, uvs, sagitta, nil); err != nil {
		t.Fatalf("CurvePlane failed: %v", err)
	}

	left, mid, right := pos[0], pos[5], pos[10]

	if math.Abs(float64(left[0])+width/2) > 1e-3 || math.Abs(float64(left[2])) > 1e-3 {
		t.Errorf("left end at %v, expected (-150, y, 0)", left)
	}
	if math.Abs(float64(right[0])-width/2) > 1e-3 || math.Abs(float64(right[2])) > 1e-3 {
		t.Errorf("right end at %v, expected (150, y, 0)", right)
	}
	if math.Abs(float64(mid[0])) > 1e-3 || math.Abs(float64(mid[2])+sagitta) > 1e-3 {
		t.Errorf("apex at %v, expected (0, y, -55)", mid)
	}
	for i, p := range pos {
		if p[1] != 4 {
			t.Errorf("vertex %d lost its height: %v", i, p)
		}
	}
}

func TestCurvePlane_VerticesLieOnCircle(t *testing.T) {
	const width, sagitta = 220.0, 50.0
	pos, uvs := flatRow(width, 21, 0)

	arc, err := CurvePlane(width, pos, uvs, sagitta, nil)
	if err != nil {
		t.Fatalf("CurvePlane failed: %v", err)
	}

	for i, p := range pos {
		dx := float64(p[0]) - arc.Center[0]
		dy := -float64(p[2]) - arc.Center[1]
		if d := math.Hypot(dx, dy); math.Abs(d-arc.Radius) > 1e-3 {
			t.Errorf("vertex %d at distance %v from center, expected %v", i, d, arc.Radius)
		}
	}
}

func TestCurvePlane_HandleSeesEveryVertex(t *testing.T) {
	pos, uvs := flatRow(100, 7, 0)

	seen := 0
	_, err := CurvePlane(100, pos, uvs, 10, func(p mgl32.Vec3, i, total int) {
		if total != len(pos) {
			t.Errorf("total %d, expected %d", total, len(pos))
		}
		if p != pos[i] {
			t.Errorf("handle got %v, stored %v", p, pos[i])
		}
		seen++
	})
	if err != nil {
		t.Fatalf("CurvePlane failed: %v", err)
	}
	if seen != len(pos) {
		t.Errorf("handle called %d times, expected %d", seen, len(pos))
	}
}

func TestCurvePlane_Degenerate(t *testing.T) {
	pos, uvs := flatRow(10, 3, 0)
	for _, c := range [][2]float64{{10, 0}, {0, 5}, {-1, 5}, {10, -2}} {
		if _, err := CurvePlane(c[0], pos, uvs, c[1], nil); !errors.Is(err, ErrDegenerateArc) {
			t.Errorf("width=%v sagitta=%v: expected ErrDegenerateArc, got %v", c[0], c[1], err)
		}
	}
}

func TestArcPoint_MatchesCurve(t *testing.T) {
	arc, err := FitArc(300, 55)
	if err != nil {
		t.Fatal(err)
	}
	p := arc.Point(0.5)
	if math.Abs(p[0]) > 1e-6 || math.Abs(p[1]-55) > 1e-6 {
		t.Errorf("Point(0.5) = %v, expected (0, 55)", p)
	}
}
