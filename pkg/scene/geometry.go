package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed triangle list
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32

	// Version is bumped whenever vertex data changes after upload
	Version int
}

// VertexCount returns the number of vertices
func (g *Geometry) VertexCount() int { return len(g.Positions) }

// Touch marks the geometry for re-upload
func (g *Geometry) Touch() { g.Version++ }

// Clone returns a deep copy
func (g *Geometry) Clone() *Geometry {
	return &Geometry{
		Positions: append([]mgl32.Vec3(nil), g.Positions...),
		Normals:   append([]mgl32.Vec3(nil), g.Normals...),
		UVs:       append([]mgl32.Vec2(nil), g.UVs...),
		Indices:   append([]uint32(nil), g.Indices...),
	}
}

// ApplyMatrix transforms positions by m and normals by its normal matrix
func (g *Geometry) ApplyMatrix(m mgl32.Mat4) *Geometry {
	normalMatrix := m.Mat3().Inv().Transpose()
	for i, p := range g.Positions {
		g.Positions[i] = mgl32.TransformCoordinate(p, m)
	}
	for i, n := range g.Normals {
		v := normalMatrix.Mul3x1(n)
		if v.Len() > 0 {
			v = v.Normalize()
		}
		g.Normals[i] = v
	}
	g.Touch()
	return g
}

// Translate moves every vertex
func (g *Geometry) Translate(x, y, z float32) *Geometry {
	return g.ApplyMatrix(mgl32.Translate3D(x, y, z))
}

// RotateX rotates about the X axis
func (g *Geometry) RotateX(angle float32) *Geometry {
	return g.ApplyMatrix(mgl32.HomogRotate3DX(angle))
}

// RotateY rotates about the Y axis
func (g *Geometry) RotateY(angle float32) *Geometry {
	return g.ApplyMatrix(mgl32.HomogRotate3DY(angle))
}

// RotateZ rotates about the Z axis
func (g *Geometry) RotateZ(angle float32) *Geometry {
	return g.ApplyMatrix(mgl32.HomogRotate3DZ(angle))
}

// Scale scales every vertex
func (g *Geometry) Scale(x, y, z float32) *Geometry {
	return g.ApplyMatrix(mgl32.Scale3D(x, y, z))
}

// ComputeVertexNormals averages face normals into the vertices
func (g *Geometry) ComputeVertexNormals() {
	normals := make([]mgl32.Vec3, len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		pa, pb, pc := g.Positions[a], g.Positions[b], g.Positions[c]
		face := pc.Sub(pb).Cross(pa.Sub(pb))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	g.Normals = normals
	g.Touch()
}

// Merge concatenates geometries into one indexed geometry
func Merge(geometries ...*Geometry) *Geometry {
	out := &Geometry{}
	for _, g := range geometries {
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, g.Positions...)
		out.Normals = append(out.Normals, g.Normals...)
		out.UVs = append(out.UVs, g.UVs...)
		for _, idx := range g.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// NewPlaneGeometry builds a width x height grid in the XY plane facing +Z.
// Vertices run row by row from the top edge; u grows with x and v with y.
func NewPlaneGeometry(width, height float32, widthSegments, heightSegments int) *Geometry {
	gridX := maxInt(widthSegments, 1)
	gridY := maxInt(heightSegments, 1)
	gridX1 := gridX + 1
	gridY1 := gridY + 1

	segW := width / float32(gridX)
	segH := height / float32(gridY)

	g := &Geometry{}
	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - width/2
			g.Positions = append(g.Positions, mgl32.Vec3{x, -y, 0})
			g.Normals = append(g.Normals, mgl32.Vec3{0, 0, 1})
			g.UVs = append(g.UVs, mgl32.Vec2{float32(ix) / float32(gridX), 1 - float32(iy)/float32(gridY)})
		}
	}

	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}

	return g
}

// NewBoxGeometry builds an axis aligned box centred on the origin
func NewBoxGeometry(width, height, depth float32) *Geometry {
	g := &Geometry{}
	w, h, d := width/2, height/2, depth/2

	// each face: normal, right axis, up axis, half extents along them and along the normal
	faces := []struct {
		normal, right, up mgl32.Vec3
		hr, hu, hn        float32
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, d, h, w},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}, d, h, w},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, w, d, h},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, w, d, h},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, w, h, d},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, w, h, d},
	}

	for _, f := range faces {
		base := uint32(len(g.Positions))
		center := f.normal.Mul(f.hn)
		corners := [4][2]float32{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
		for _, c := range corners {
			p := center.Add(f.right.Mul(c[0] * f.hr)).Add(f.up.Mul(c[1] * f.hu))
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, f.normal)
			g.UVs = append(g.UVs, mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2})
		}
		g.Indices = append(g.Indices, base, base+2, base+1, base+2, base+3, base+1)
	}

	return g
}

// NewCylinderGeometry builds a capped cylinder along Y centred on the origin
func NewCylinderGeometry(radiusTop, radiusBottom, height float32, radialSegments, heightSegments int) *Geometry {
	radial := maxInt(radialSegments, 3)
	rows := maxInt(heightSegments, 1)
	g := &Geometry{}

	slope := (radiusBottom - radiusTop) / height
	grid := make([][]uint32, rows+1)

	for y := 0; y <= rows; y++ {
		v := float32(y) / float32(rows)
		radius := v*(radiusBottom-radiusTop) + radiusTop
		for x := 0; x <= radial; x++ {
			u := float32(x) / float32(radial)
			theta := float64(u) * 2 * math.Pi
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))

			grid[y] = append(grid[y], uint32(len(g.Positions)))
			g.Positions = append(g.Positions, mgl32.Vec3{radius * sin, -v*height + height/2, radius * cos})
			g.Normals = append(g.Normals, mgl32.Vec3{sin, slope, cos}.Normalize())
			g.UVs = append(g.UVs, mgl32.Vec2{u, 1 - v})
		}
	}

	for x := 0; x < radial; x++ {
		for y := 0; y < rows; y++ {
			a := grid[y][x]
			b := grid[y+1][x]
			c := grid[y+1][x+1]
			d := grid[y][x+1]
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}

	addCap := func(top bool) {
		radius, sign := radiusBottom, float32(-1)
		if top {
			radius, sign = radiusTop, 1
		}
		if radius <= 0 {
			return
		}

		normal := mgl32.Vec3{0, sign, 0}
		center := uint32(len(g.Positions))
		g.Positions = append(g.Positions, mgl32.Vec3{0, sign * height / 2, 0})
		g.Normals = append(g.Normals, normal)
		g.UVs = append(g.UVs, mgl32.Vec2{0.5, 0.5})

		for x := 0; x <= radial; x++ {
			theta := float64(x) / float64(radial) * 2 * math.Pi
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
			g.Positions = append(g.Positions, mgl32.Vec3{radius * sin, sign * height / 2, radius * cos})
			g.Normals = append(g.Normals, normal)
			g.UVs = append(g.UVs, mgl32.Vec2{cos*0.5 + 0.5, sin*0.5*sign + 0.5})
		}

		for x := uint32(0); x < uint32(radial); x++ {
			i := center + 1 + x
			if top {
				g.Indices = append(g.Indices, i, i+1, center)
			} else {
				g.Indices = append(g.Indices, i+1, i, center)
			}
		}
	}
	addCap(true)
	addCap(false)

	return g
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
