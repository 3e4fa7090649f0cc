// Package scene is a small retained scene graph: transforms, layers, meshes,
// lights and cameras. It knows nothing about OpenGL; the engine walks it.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Object is anything that can live in the scene graph
type Object interface {
	Base() *Node
}

// Layers is a bit mask of up to 32 render layers
type Layers uint32

// DefaultLayers contains only layer 0
const DefaultLayers Layers = 1

// Set replaces the mask with only layer n
func (l *Layers) Set(n int) { *l = 1 << uint(n) }

// Enable adds layer n
func (l *Layers) Enable(n int) { *l |= 1 << uint(n) }

// Disable removes layer n
func (l *Layers) Disable(n int) { *l &^= 1 << uint(n) }

// Has reports membership of layer n
func (l Layers) Has(n int) bool { return l&(1<<uint(n)) != 0 }

// Test reports whether two masks share at least one layer
func (l Layers) Test(other Layers) bool { return l&other != 0 }

// Node carries the transform and hierarchy shared by every object
type Node struct {
	Name          string
	Position      mgl32.Vec3
	Quaternion    mgl32.Quat
	Scale         mgl32.Vec3
	Layers        Layers
	Visible       bool
	CastShadow    bool
	ReceiveShadow bool

	parent   *Node
	children []Object
}

// NewNode returns a visible identity node on layer 0
func NewNode(name string) Node {
	return Node{
		Name:       name,
		Quaternion: mgl32.QuatIdent(),
		Scale:      mgl32.Vec3{1, 1, 1},
		Layers:     DefaultLayers,
		Visible:    true,
	}
}

// Base implements Object
func (n *Node) Base() *Node { return n }

// Parent returns the parent node, nil for roots
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children
func (n *Node) Children() []Object { return n.children }

// Add attaches objects as children, detaching them from any previous parent
func (n *Node) Add(objects ...Object) {
	for _, o := range objects {
		child := o.Base()
		if child.parent != nil {
			child.parent.Remove(o)
		}
		child.parent = n
		n.children = append(n.children, o)
	}
}

// Remove detaches a direct child
func (n *Node) Remove(o Object) {
	child := o.Base()
	for i, c := range n.children {
		if c.Base() == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// SetRotation sets the orientation from XYZ Euler angles in radians
func (n *Node) SetRotation(x, y, z float32) {
	qx := mgl32.QuatRotate(x, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(y, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(z, mgl32.Vec3{0, 0, 1})
	n.Quaternion = qx.Mul(qy).Mul(qz).Normalize()
}

// SetScale sets a uniform scale
func (n *Node) SetScale(s float32) { n.Scale = mgl32.Vec3{s, s, s} }

// Local returns the transform relative to the parent
func (n *Node) Local() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Quaternion.Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// World returns the transform relative to the root
func (n *Node) World() mgl32.Mat4 {
	if n.parent == nil {
		return n.Local()
	}
	return n.parent.World().Mul4(n.Local())
}

// WorldPosition returns the node origin in world space
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.World().Col(3).Vec3()
}

// worldQuat is the accumulated rotation of the node and its ancestors
func (n *Node) worldQuat() mgl32.Quat {
	if n.parent == nil {
		return n.Quaternion
	}
	return n.parent.worldQuat().Mul(n.Quaternion)
}

// LookAt turns the node so its local +Z axis points at a world-space target
func (n *Node) LookAt(target mgl32.Vec3) {
	q := lookRotation(n.WorldPosition(), target, mgl32.Vec3{0, 1, 0})
	if n.parent != nil {
		q = n.parent.worldQuat().Inverse().Mul(q)
	}
	n.Quaternion = q.Normalize()
}

// lookRotation builds the rotation taking +Z to the direction eye->target
func lookRotation(eye, target, up mgl32.Vec3) mgl32.Quat {
	z := target.Sub(eye)
	if z.Len() == 0 {
		z = mgl32.Vec3{0, 0, 1}
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Len() == 0 {
		// up parallel to z, nudge z to pick any perpendicular axis
		if abs32(up[2]) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	return mgl32.Mat4ToQuat(mgl32.Mat3FromCols(x, y, z).Mat4())
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Traverse visits o and every descendant depth first
func Traverse(o Object, fn func(Object)) {
	fn(o)
	for _, c := range o.Base().children {
		Traverse(c, fn)
	}
}

// Group is a node with no content of its own
type Group struct {
	Node
}

// NewGroup creates an empty group
func NewGroup(name string) *Group {
	return &Group{Node: NewNode(name)}
}
