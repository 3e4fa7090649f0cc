package scene

// Fog fades linearly to Color between Near and Far
type Fog struct {
	Color Color
	Near  float32
	Far   float32
}

// Scene is the root of the graph plus global render settings
type Scene struct {
	Node
	Background Color
	Fog        *Fog
}

// New creates an empty scene
func New() *Scene {
	return &Scene{Node: NewNode("scene")}
}

// Meshes returns every mesh in traversal order
func (s *Scene) Meshes() []*Mesh {
	var out []*Mesh
	Traverse(s, func(o Object) {
		if m, ok := o.(*Mesh); ok {
			out = append(out, m)
		}
	})
	return out
}

// SpotLights returns every spot light in traversal order
func (s *Scene) SpotLights() []*SpotLight {
	var out []*SpotLight
	Traverse(s, func(o Object) {
		if l, ok := o.(*SpotLight); ok {
			out = append(out, l)
		}
	})
	return out
}

// HemisphereLights returns every hemisphere light in traversal order
func (s *Scene) HemisphereLights() []*HemisphereLight {
	var out []*HemisphereLight
	Traverse(s, func(o Object) {
		if l, ok := o.(*HemisphereLight); ok {
			out = append(out, l)
		}
	})
	return out
}
