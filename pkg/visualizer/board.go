package visualizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/util"
	"resonance/pkg/config"
	"resonance/pkg/scene"
)

// MaxShapes bounds the decorative shapes, one per bin of the 1024 analyser
const MaxShapes = 1024

// BoardResolution is the analyser resolution driving the shapes
const BoardResolution = 1024

const (
	wallWidth    = 300
	wallHeight   = 140
	wallSegments = 10
	wallSagitta  = 55
	wallOffsetZ  = 10

	gridWidth    = 220
	gridHeight   = 90
	gridSegments = 21
	gridSagitta  = 50
	shapeOffsetZ = 5
	shapeScale   = 2

	boardLightIntensity = 100
	boardLightDistance  = 220

	aimMinHeight = 50
	aimMaxHeight = 500
)

var boardAnchor = mgl32.Vec3{0, 60, -90}

type lightPlacement struct {
	position mgl32.Vec3
	target   mgl32.Vec3
	angle    float32
}

var (
	mainBoardLight = lightPlacement{
		position: mgl32.Vec3{0, 135, -98.63092093733783},
		target:   mgl32.Vec3{0.44200428244908, 10, -151.2419546860015},
		angle:    math.Pi / 3,
	}
	dancerLights = []lightPlacement{
		{
			position: mgl32.Vec3{71.6636132539122, 135, -77.66823752738148},
			target:   mgl32.Vec3{124.92020194070969, 10, -123.10059147583168},
			angle:    math.Pi / 7,
		},
		{
			position: mgl32.Vec3{-68.3931392529584, 135, -79.82508568595989},
			target:   mgl32.Vec3{-110.65155385955642, 10, -121.8696130079914},
			angle:    math.Pi / 7,
		},
	}
)

// Board is the curved wall with its shapes and lights
type Board struct {
	Wall      *scene.Mesh
	Shapes    []*scene.Mesh
	MainLight *scene.SpotLight
	Dancers   []*scene.SpotLight

	gradient config.ColorGradient
}

// ShapeGeometry builds the merged box-and-cylinder shared by every shape
func ShapeGeometry() *scene.Geometry {
	box := scene.NewBoxGeometry(30, 15, 2)
	cylinder := scene.NewCylinderGeometry(4, 4, 20, 10, 1)

	box.Translate(13, 0, -2.2)
	box.RotateY(-math.Pi / 4)

	g := scene.Merge(box, cylinder)
	g.RotateX(math.Pi / 2)
	g.RotateY(-math.Pi / 2)
	g.Scale(0.2, 0.2, 0.2)
	return g
}

// BuildBoard adds the wall, shapes and board lights to the scene
func BuildBoard(ctx *Context) (*Board, error) {
	scheme := ctx.Session.Lights
	b := &Board{gradient: scheme.DancerLightColor}

	wallGeometry := scene.NewPlaneGeometry(wallWidth, wallHeight, wallSegments, wallSegments)
	if _, err := util.CurvePlane(wallWidth, wallGeometry.Positions, wallGeometry.UVs, wallSagitta, nil); err != nil {
		return nil, fmt.Errorf("failed to curve wall: %w", err)
	}
	wallGeometry.ComputeVertexNormals()

	b.Wall = scene.NewMesh("board.wall", wallGeometry, scene.NewPhysicalMaterial(scene.Hex(0xffffff), 0.5, 0.8))
	b.Wall.Position = boardAnchor.Add(mgl32.Vec3{0, 0, wallOffsetZ})
	ctx.Scene.Add(b.Wall)

	shapes, err := placeShapes(ShapeGeometry())
	if err != nil {
		return nil, err
	}
	for _, s := range shapes {
		ctx.Scene.Add(s)
	}
	b.Shapes = shapes

	b.MainLight = boardLight("board.main", mainBoardLight, scene.Hex(uint32(scheme.MainLightColor)))
	ctx.Scene.Add(b.MainLight)

	for i, p := range dancerLights {
		l := boardLight(fmt.Sprintf("board.dancer%d", i), p, scene.Hex(uint32(scheme.DancerLightColor.From)))
		b.Dancers = append(b.Dancers, l)
		ctx.Scene.Add(l)
	}

	return b, nil
}

// placeShapes puts one shape on every vertex of a curved placement grid
func placeShapes(geometry *scene.Geometry) ([]*scene.Mesh, error) {
	grid := scene.NewPlaneGeometry(gridWidth, gridHeight, gridSegments, gridSegments)

	var shapes []*scene.Mesh
	_, err := util.CurvePlane(gridWidth, grid.Positions, grid.UVs, gridSagitta, func(pos mgl32.Vec3, i, total int) {
		if len(shapes) >= MaxShapes {
			return
		}

		shape := scene.NewMesh(fmt.Sprintf("board.shape%d", i), geometry, scene.NewPhysicalMaterial(scene.Hex(0xffffff), 1, 0.3))
		shape.Position = pos.Add(boardAnchor).Add(mgl32.Vec3{0, 0, shapeOffsetZ})
		shape.SetScale(shapeScale)
		shape.CastShadow = true
		shape.ReceiveShadow = true
		shape.LookAt(mgl32.Vec3{})

		shapes = append(shapes, shape)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to curve shape grid: %w", err)
	}
	if len(shapes) == 0 {
		return nil, errors.New("shape grid produced no shapes")
	}

	return shapes, nil
}

func boardLight(name string, p lightPlacement, c scene.Color) *scene.SpotLight {
	l := scene.NewSpotLight(name, c, boardLightIntensity)
	l.Position = p.position
	l.Target.Position = p.target
	l.Angle = p.angle
	l.Penumbra = 1
	l.Decay = 1
	l.Distance = boardLightDistance
	l.CastShadow = true
	l.Shadow = scene.DefaultShadow()
	return l
}

// OnRender updates the dancer lights from loadPower and re-aims every shape
// from its frequency bin. Shape i pairs with bin i; shapes without a bin
// keep their last orientation.
func (b *Board) OnRender(loadPower float64, bins []byte) {
	intensity := float32(util.RemapRange(loadPower*100, 0, 100, 1, 100))
	color := scene.Hex(util.InterpolateColorsCompact(uint32(b.gradient.From), uint32(b.gradient.To), loadPower))

	for _, l := range b.Dancers {
		l.Intensity = intensity
		l.Color = color
	}

	n := len(b.Shapes)
	if len(bins) < n {
		n = len(bins)
	}
	for i := 0; i < n; i++ {
		height := util.RemapRange(float64(bins[i]), 0, 0xff, aimMinHeight, aimMaxHeight)
		b.Shapes[i].LookAt(mgl32.Vec3{0, float32(height), 0})
	}
}
