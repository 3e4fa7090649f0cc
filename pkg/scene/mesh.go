package scene

// Mesh draws a geometry with a material
type Mesh struct {
	Node
	Geometry *Geometry
	Material Material
}

// NewMesh creates a mesh on layer 0
func NewMesh(name string, g *Geometry, m Material) *Mesh {
	return &Mesh{Node: NewNode(name), Geometry: g, Material: m}
}
