package engine

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"resonance/pkg/scene"
)

// gpuGeometry holds the buffers for one uploaded geometry
type gpuGeometry struct {
	vao        uint32
	buffers    [4]uint32 // positions, normals, uvs, indices
	count      int32
	indexed    bool
	version    int
	vertexSize int
}

// gpuTexture is one uploaded texture
type gpuTexture struct {
	id      uint32
	version uint64
}

// gpuCache uploads scene data on first use and again whenever its version moves
type gpuCache struct {
	geometries map[*scene.Geometry]*gpuGeometry
	textures   map[*scene.Texture]*gpuTexture
}

func newGPUCache() *gpuCache {
	return &gpuCache{
		geometries: make(map[*scene.Geometry]*gpuGeometry),
		textures:   make(map[*scene.Texture]*gpuTexture),
	}
}

// geometry returns the VAO for g, uploading it if needed. Nil for empty geometry.
func (c *gpuCache) geometry(g *scene.Geometry) *gpuGeometry {
	if g == nil || len(g.Positions) == 0 {
		return nil
	}

	gpu, ok := c.geometries[g]
	if ok && gpu.version == g.Version && gpu.vertexSize == len(g.Positions) {
		return gpu
	}
	if !ok {
		gpu = &gpuGeometry{}
		gl.GenVertexArrays(1, &gpu.vao)
		gl.GenBuffers(int32(len(gpu.buffers)), &gpu.buffers[0])
		c.geometries[g] = gpu
	}

	gl.BindVertexArray(gpu.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.buffers[0])
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Positions)*3*4, gl.Ptr(g.Positions), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	if len(g.Normals) == len(g.Positions) {
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.buffers[1])
		gl.BufferData(gl.ARRAY_BUFFER, len(g.Normals)*3*4, gl.Ptr(g.Normals), gl.STATIC_DRAW)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
	} else {
		gl.DisableVertexAttribArray(1)
		gl.VertexAttrib3f(1, 0, 1, 0)
	}

	if len(g.UVs) == len(g.Positions) {
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.buffers[2])
		gl.BufferData(gl.ARRAY_BUFFER, len(g.UVs)*2*4, gl.Ptr(g.UVs), gl.STATIC_DRAW)
		gl.VertexAttribPointer(2, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(2)
	} else {
		gl.DisableVertexAttribArray(2)
		gl.VertexAttrib2f(2, 0, 0)
	}

	gpu.indexed = len(g.Indices) > 0
	if gpu.indexed {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.buffers[3])
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)
		gpu.count = int32(len(g.Indices))
	} else {
		gpu.count = int32(len(g.Positions))
	}

	gl.BindVertexArray(0)

	gpu.version = g.Version
	gpu.vertexSize = len(g.Positions)
	return gpu
}

func (g *gpuGeometry) draw() {
	gl.BindVertexArray(g.vao)
	if g.indexed {
		gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, g.count)
	}
	gl.BindVertexArray(0)
}

// texture returns the GL name for t, uploading it if needed. Zero for nil.
func (c *gpuCache) texture(t *scene.Texture) uint32 {
	if t == nil || t.Image == nil {
		return 0
	}

	version := t.Version()
	gpu, ok := c.textures[t]
	if ok && gpu.version == version {
		return gpu.id
	}
	if !ok {
		gpu = &gpuTexture{}
		gl.GenTextures(1, &gpu.id)
		c.textures[t] = gpu
	}

	internal := int32(gl.RGBA8)
	if t.SRGB {
		internal = gl.SRGB8_ALPHA8
	}

	b := t.Image.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, gpu.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(t.Image.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	gpu.version = version
	return gpu.id
}

// release frees everything the cache uploaded
func (c *gpuCache) release() {
	for g, gpu := range c.geometries {
		gl.DeleteBuffers(int32(len(gpu.buffers)), &gpu.buffers[0])
		gl.DeleteVertexArrays(1, &gpu.vao)
		delete(c.geometries, g)
	}
	for t, gpu := range c.textures {
		gl.DeleteTextures(1, &gpu.id)
		delete(c.textures, t)
	}
}
