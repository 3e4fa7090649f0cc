package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var icosahedronVertices = func() []mgl32.Vec3 {
	t := float32((1 + math.Sqrt(5)) / 2)
	return []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
}()

var icosahedronFaces = [][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// NewIcosahedronGeometry builds a sphere approximation by splitting every
// icosahedron edge into detail+1 segments and projecting onto the radius.
// Faces do not share vertices so UV seams stay sharp.
func NewIcosahedronGeometry(radius float32, detail int) *Geometry {
	if detail < 0 {
		detail = 0
	}
	cols := detail + 1
	g := &Geometry{}

	for _, f := range icosahedronFaces {
		a := icosahedronVertices[f[0]]
		b := icosahedronVertices[f[1]]
		c := icosahedronVertices[f[2]]

		// rows of points interpolated between the a->c and b->c edges
		grid := make([][]mgl32.Vec3, cols+1)
		for i := 0; i <= cols; i++ {
			t := float32(i) / float32(cols)
			aj := a.Add(c.Sub(a).Mul(t))
			bj := b.Add(c.Sub(b).Mul(t))
			rows := cols - i
			for j := 0; j <= rows; j++ {
				if j == 0 && i == cols {
					grid[i] = append(grid[i], aj)
					continue
				}
				grid[i] = append(grid[i], aj.Add(bj.Sub(aj).Mul(float32(j)/float32(rows))))
			}
		}

		for i := 0; i < cols; i++ {
			for j := 0; j < 2*(cols-i)-1; j++ {
				k := j / 2
				if j%2 == 0 {
					g.addSphereTriangle(radius, grid[i][k+1], grid[i+1][k], grid[i][k])
				} else {
					g.addSphereTriangle(radius, grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
				}
			}
		}
	}

	return g
}

func (g *Geometry) addSphereTriangle(radius float32, vs ...mgl32.Vec3) {
	base := uint32(len(g.Positions))
	var uvs [3]mgl32.Vec2

	for i, v := range vs {
		n := v.Normalize()
		g.Positions = append(g.Positions, n.Mul(radius))
		g.Normals = append(g.Normals, n)
		uvs[i] = sphereUV(n)
	}

	correctSeam(&uvs, vs)
	g.UVs = append(g.UVs, uvs[:]...)
	g.Indices = append(g.Indices, base, base+1, base+2)
}

func sphereUV(n mgl32.Vec3) mgl32.Vec2 {
	azimuth := math.Atan2(float64(n[2]), float64(-n[0]))
	inclination := math.Atan2(float64(-n[1]), math.Sqrt(float64(n[0]*n[0]+n[2]*n[2])))
	return mgl32.Vec2{
		float32(azimuth/2/math.Pi + 0.5),
		float32(inclination/math.Pi + 0.5),
	}
}

// correctSeam fixes triangles straddling the u=0/u=1 wrap and the poles
func correctSeam(uvs *[3]mgl32.Vec2, vs []mgl32.Vec3) {
	minU, maxU := uvs[0][0], uvs[0][0]
	for _, uv := range uvs[1:] {
		if uv[0] < minU {
			minU = uv[0]
		}
		if uv[0] > maxU {
			maxU = uv[0]
		}
	}
	if maxU > 0.9 && minU < 0.1 {
		for i := range uvs {
			if uvs[i][0] < 0.2 {
				uvs[i][0]++
			}
		}
	}

	// a pole vertex takes the average azimuth of the other two
	for i, v := range vs {
		n := v.Normalize()
		if n[0] == 0 && n[2] == 0 {
			j, k := (i+1)%3, (i+2)%3
			uvs[i][0] = (uvs[j][0] + uvs[k][0]) / 2
		}
	}
}
