package engine

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"resonance/internal/logger"
	"resonance/pkg/scene"
)

// Texture units used by the scene program
const (
	unitMap uint32 = iota
	unitAOMap
	unitNormalMap
	unitDisplacementMap
	unitEmissiveMask
	unitShadowBase
)

const (
	materialBasic int32 = iota
	materialLambert
	materialPhong
	materialPhysical
)

// sceneUniforms are the fixed uniform slots of the scene program
type sceneUniforms struct {
	model, view, projection, normalMatrix int32
	cameraPosition                        int32

	useDisplacementMap, displacementMap, displacementScale, displacementBias int32

	materialKind, diffuse, specular, shininess, metalness, roughness, emissive, doubleSided   int32
	useMap, mapSampler, useAOMap, aoMap, aoMapIntensity, useNormalMap, normalMap, normalScale int32
	useEmissiveMask, emissiveMaskMap, emissiveMaskContrast, emissiveMaskColorPower            int32

	hemisphereSky, hemisphereGround, hemisphereDirection int32

	spotLightCount, spotPosition, spotDirection, spotColor, spotDistance, spotDecay int32
	spotConeCos, spotPenumbraCos, spotCastShadow, spotShadowBias, spotShadowTexel   int32
	spotShadowMap, spotShadowMatrix                                                 int32
	receiveShadow                                                                   int32

	useFog, fogColor, fogNear, fogFar int32
}

func locateSceneUniforms(p *program) sceneUniforms {
	return sceneUniforms{
		model:          p.uniform("model"),
		view:           p.uniform("view"),
		projection:     p.uniform("projection"),
		normalMatrix:   p.uniform("normalMatrix"),
		cameraPosition: p.uniform("cameraPosition"),

		useDisplacementMap: p.uniform("useDisplacementMap"),
		displacementMap:    p.uniform("displacementMap"),
		displacementScale:  p.uniform("displacementScale"),
		displacementBias:   p.uniform("displacementBias"),

		materialKind: p.uniform("materialKind"),
		diffuse:      p.uniform("diffuse"),
		specular:     p.uniform("specular"),
		shininess:    p.uniform("shininess"),
		metalness:    p.uniform("metalness"),
		roughness:    p.uniform("roughness"),
		emissive:     p.uniform("emissive"),
		doubleSided:  p.uniform("doubleSided"),

		useMap:         p.uniform("useMap"),
		mapSampler:     p.uniform("map"),
		useAOMap:       p.uniform("useAOMap"),
		aoMap:          p.uniform("aoMap"),
		aoMapIntensity: p.uniform("aoMapIntensity"),
		useNormalMap:   p.uniform("useNormalMap"),
		normalMap:      p.uniform("normalMap"),
		normalScale:    p.uniform("normalScale"),

		useEmissiveMask:        p.uniform("useEmissiveMask"),
		emissiveMaskMap:        p.uniform("emissiveMaskMap"),
		emissiveMaskContrast:   p.uniform("emissiveMaskContrast"),
		emissiveMaskColorPower: p.uniform("emissiveMaskColorPower"),

		hemisphereSky:       p.uniform("hemisphereSky"),
		hemisphereGround:    p.uniform("hemisphereGround"),
		hemisphereDirection: p.uniform("hemisphereDirection"),

		spotLightCount:   p.uniform("spotLightCount"),
		spotPosition:     p.uniform("spotPosition"),
		spotDirection:    p.uniform("spotDirection"),
		spotColor:        p.uniform("spotColor"),
		spotDistance:     p.uniform("spotDistance"),
		spotDecay:        p.uniform("spotDecay"),
		spotConeCos:      p.uniform("spotConeCos"),
		spotPenumbraCos:  p.uniform("spotPenumbraCos"),
		spotCastShadow:   p.uniform("spotCastShadow"),
		spotShadowBias:   p.uniform("spotShadowBias"),
		spotShadowTexel:  p.uniform("spotShadowTexel"),
		spotShadowMap:    p.uniform("spotShadowMap"),
		spotShadowMatrix: p.uniform("spotShadowMatrix"),
		receiveShadow:    p.uniform("receiveShadow"),

		useFog:   p.uniform("useFog"),
		fogColor: p.uniform("fogColor"),
		fogNear:  p.uniform("fogNear"),
		fogFar:   p.uniform("fogFar"),
	}
}

type depthUniforms struct {
	lightMVP                                                                 int32
	useDisplacementMap, displacementMap, displacementScale, displacementBias int32
}

// OpenGLRenderer draws a scene graph into a render target or the window
type OpenGLRenderer struct {
	log    *logger.Logger
	width  int
	height int

	scene    *program
	sceneU   sceneUniforms
	depth    *program
	depthU   depthUniforms
	quadVAO  uint32
	quadVBO  uint32
	white    uint32
	cache    *gpuCache
	shadows  [maxSpotLights]*ShadowMap
	dirtyLog map[string]bool
}

// NewOpenGLRenderer compiles the scene programs. The GL context must be current.
func NewOpenGLRenderer(width, height int, log *logger.Logger) (*OpenGLRenderer, error) {
	r := &OpenGLRenderer{
		log:      log,
		width:    width,
		height:   height,
		cache:    newGPUCache(),
		dirtyLog: make(map[string]bool),
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0, 0, 0, 1)

	var err error
	if r.scene, err = newProgram(sceneVertexShader, sceneFragmentShader); err != nil {
		return nil, fmt.Errorf("failed to build scene program: %w", err)
	}
	r.sceneU = locateSceneUniforms(r.scene)

	if r.depth, err = newProgram(depthVertexShader, depthFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to build depth program: %w", err)
	}
	r.depthU = depthUniforms{
		lightMVP:           r.depth.uniform("lightMVP"),
		useDisplacementMap: r.depth.uniform("useDisplacementMap"),
		displacementMap:    r.depth.uniform("displacementMap"),
		displacementScale:  r.depth.uniform("displacementScale"),
		displacementBias:   r.depth.uniform("displacementBias"),
	}

	for i := range r.shadows {
		if r.shadows[i], err = NewShadowMap(scene.DefaultShadow().MapSize); err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to create shadow map: %w", err)
		}
	}

	r.setupScreenQuad()
	r.white = r.cache.texture(solidTexture(color.RGBA{255, 255, 255, 255}))

	return r, nil
}

// solidTexture is a 1x1 texture bound to unused sampler slots
func solidTexture(c color.RGBA) *scene.Texture {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return scene.NewTexture("solid", img, false)
}

// setupScreenQuad creates a full-screen quad for the composer passes
func (r *OpenGLRenderer) setupScreenQuad() {
	vertices := []float32{
		// position  // uv
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
}

// SetSize records the window framebuffer size
func (r *OpenGLRenderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

// Size returns the window framebuffer size
func (r *OpenGLRenderer) Size() (int, int) { return r.width, r.height }

// bindTarget makes t the draw framebuffer; nil is the window
func (r *OpenGLRenderer) bindTarget(t *RenderTarget) {
	if t == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(r.width), int32(r.height))
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
}

// drawQuad runs the current program over the whole target
func (r *OpenGLRenderer) drawQuad() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// spotLights returns the visible spot lights the shader has room for
func (r *OpenGLRenderer) spotLights(s *scene.Scene) []*scene.SpotLight {
	var out []*scene.SpotLight
	for _, l := range s.SpotLights() {
		if !l.Visible {
			continue
		}
		if len(out) == maxSpotLights {
			r.warnOnce("spots", "More than %d spot lights, extras are ignored", maxSpotLights)
			break
		}
		out = append(out, l)
	}
	return out
}

func (r *OpenGLRenderer) warnOnce(key, format string, v ...interface{}) {
	if r.dirtyLog[key] {
		return
	}
	r.dirtyLog[key] = true
	r.log.Warnf(format, v...)
}

// Render draws the scene from the camera into t, nil being the window
func (r *OpenGLRenderer) Render(s *scene.Scene, camera *scene.PerspectiveCamera, t *RenderTarget) error {
	spots := r.spotLights(s)
	meshes := s.Meshes()

	if err := r.renderShadows(spots, meshes); err != nil {
		return err
	}

	r.bindTarget(t)
	gl.ClearColor(s.Background[0], s.Background[1], s.Background[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	u := &r.sceneU
	r.scene.use()

	setMat4(u.view, camera.View())
	setMat4(u.projection, camera.Projection())
	setVec3(u.cameraPosition, camera.WorldPosition())

	r.applyHemisphere(s.HemisphereLights())
	r.applySpots(spots)

	for _, m := range meshes {
		if !m.Visible || !camera.Sees(m) {
			continue
		}
		geometry := r.cache.geometry(m.Geometry)
		if geometry == nil {
			continue
		}

		model := m.World()
		setMat4(u.model, model)
		setMat3(u.normalMatrix, model.Mat3().Inv().Transpose())
		setBool(u.receiveShadow, m.ReceiveShadow)

		r.applyMaterial(m.Material, s.Fog)
		geometry.draw()
	}

	return glError("scene pass")
}

func (r *OpenGLRenderer) renderShadows(spots []*scene.SpotLight, meshes []*scene.Mesh) error {
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(1, 1)
	gl.Disable(gl.CULL_FACE)
	r.depth.use()

	for i, l := range spots {
		if !l.CastShadow {
			continue
		}
		if size := l.Shadow.MapSize; size > 0 && size != r.shadows[i].size {
			sm, err := NewShadowMap(size)
			if err != nil {
				return fmt.Errorf("failed to resize shadow map: %w", err)
			}
			r.shadows[i].Delete()
			r.shadows[i] = sm
		}

		sm := r.shadows[i]
		gl.BindFramebuffer(gl.FRAMEBUFFER, sm.fbo)
		gl.Viewport(0, 0, int32(sm.size), int32(sm.size))
		gl.Clear(gl.DEPTH_BUFFER_BIT)

		lightVP := l.ShadowMatrix()
		for _, m := range meshes {
			if !m.Visible || !m.CastShadow {
				continue
			}
			geometry := r.cache.geometry(m.Geometry)
			if geometry == nil {
				continue
			}
			setMat4(r.depthU.lightMVP, lightVP.Mul4(m.World()))
			r.applyDisplacement(m.Material, r.depthU.useDisplacementMap, r.depthU.displacementMap,
				r.depthU.displacementScale, r.depthU.displacementBias)
			geometry.draw()
		}
	}

	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (r *OpenGLRenderer) applyHemisphere(lights []*scene.HemisphereLight) {
	var sky, ground mgl32.Vec3
	direction := mgl32.Vec3{0, 1, 0}
	for _, l := range lights {
		if !l.Visible {
			continue
		}
		sky = sky.Add(l.Sky.Mul(l.Intensity))
		ground = ground.Add(l.Ground.Mul(l.Intensity))
		if p := l.WorldPosition(); p.Len() > 0 {
			direction = p.Normalize()
		}
	}

	u := &r.sceneU
	setVec3(u.hemisphereSky, sky)
	setVec3(u.hemisphereGround, ground)
	setVec3(u.hemisphereDirection, direction)
}

func (r *OpenGLRenderer) applySpots(spots []*scene.SpotLight) {
	var (
		positions  = make([]float32, 3*maxSpotLights)
		directions = make([]float32, 3*maxSpotLights)
		colors     = make([]float32, 3*maxSpotLights)
		distances  = make([]float32, maxSpotLights)
		decays     = make([]float32, maxSpotLights)
		cones      = make([]float32, maxSpotLights)
		penumbras  = make([]float32, maxSpotLights)
		casts      = make([]int32, maxSpotLights)
		biases     = make([]float32, maxSpotLights)
		texels     = make([]float32, maxSpotLights)
		units      = make([]int32, maxSpotLights)
		matrices   = make([]float32, 16*maxSpotLights)
	)

	for i := 0; i < maxSpotLights; i++ {
		units[i] = int32(unitShadowBase) + int32(i)
		gl.ActiveTexture(gl.TEXTURE0 + unitShadowBase + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, r.shadows[i].texture)
		texels[i] = 1 / float32(r.shadows[i].size)
	}

	for i, l := range spots {
		pos := l.WorldPosition()
		dir := l.Direction().Mul(-1)
		c := l.Color.Mul(l.Intensity)
		copy(positions[3*i:], pos[:])
		copy(directions[3*i:], dir[:])
		copy(colors[3*i:], c[:])

		distances[i] = l.Distance
		decays[i] = l.Decay
		cones[i] = float32(math.Cos(float64(l.Angle)))
		penumbras[i] = float32(math.Cos(float64(l.Angle * (1 - l.Penumbra))))
		biases[i] = l.Shadow.Bias
		if l.CastShadow {
			casts[i] = 1
		}

		m := l.ShadowMatrix()
		copy(matrices[16*i:], m[:])
	}

	u := &r.sceneU
	gl.Uniform1i(u.spotLightCount, int32(len(spots)))
	gl.Uniform3fv(u.spotPosition, maxSpotLights, &positions[0])
	gl.Uniform3fv(u.spotDirection, maxSpotLights, &directions[0])
	gl.Uniform3fv(u.spotColor, maxSpotLights, &colors[0])
	gl.Uniform1fv(u.spotDistance, maxSpotLights, &distances[0])
	gl.Uniform1fv(u.spotDecay, maxSpotLights, &decays[0])
	gl.Uniform1fv(u.spotConeCos, maxSpotLights, &cones[0])
	gl.Uniform1fv(u.spotPenumbraCos, maxSpotLights, &penumbras[0])
	gl.Uniform1iv(u.spotCastShadow, maxSpotLights, &casts[0])
	gl.Uniform1fv(u.spotShadowBias, maxSpotLights, &biases[0])
	gl.Uniform1fv(u.spotShadowTexel, maxSpotLights, &texels[0])
	gl.Uniform1iv(u.spotShadowMap, maxSpotLights, &units[0])
	gl.UniformMatrix4fv(u.spotShadowMatrix, maxSpotLights, false, &matrices[0])
}

// applyDisplacement sets the vertex displacement slots for either program
func (r *OpenGLRenderer) applyDisplacement(m scene.Material, use, sampler, scale, bias int32) {
	phong, ok := m.(*scene.PhongMaterial)
	if !ok || phong.DisplacementMap == nil {
		setBool(use, false)
		bindTexture(sampler, unitDisplacementMap, r.white)
		return
	}
	setBool(use, true)
	bindTexture(sampler, unitDisplacementMap, r.cache.texture(phong.DisplacementMap))
	gl.Uniform1f(scale, phong.DisplacementScale)
	gl.Uniform1f(bias, phong.DisplacementBias)
}

// applyMaterial fills the material slots of the scene program
func (r *OpenGLRenderer) applyMaterial(m scene.Material, fog *scene.Fog) {
	u := &r.sceneU

	var (
		kind      = materialBasic
		diffuse   = mgl32.Vec3{1, 1, 1}
		specular  mgl32.Vec3
		shininess float32 = 30
		metalness float32
		roughness float32 = 1
		emissive  mgl32.Vec3
		mapTex    *scene.Texture
		aoTex     *scene.Texture
		normalTex *scene.Texture
		aoAmount  float32 = 1
		normalAmt float32 = 1
		mask      scene.EmissiveMask
	)

	switch m := m.(type) {
	case *scene.BasicMaterial:
		kind, diffuse = materialBasic, m.Color
	case *scene.LambertMaterial:
		kind, diffuse = materialLambert, m.Color
	case *scene.PhongMaterial:
		kind, diffuse = materialPhong, m.Color
		specular, shininess = m.Specular, m.Shininess
		emissive = m.Emissive.Mul(m.EmissiveIntensity)
		mapTex, aoTex, normalTex = m.Map, m.AOMap, m.NormalMap
		aoAmount, normalAmt = m.AOMapIntensity, m.NormalScale
		mask = m.EmissiveMask
	case *scene.PhysicalMaterial:
		kind, diffuse = materialPhysical, m.Color
		metalness, roughness = m.Metalness, m.Roughness
	default:
		r.warnOnce(fmt.Sprintf("%T", m), "Unsupported material %T drawn as basic", m)
	}

	settings := m.Settings()
	if settings.Side == scene.DoubleSide {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	gl.Uniform1i(u.materialKind, kind)
	setVec3(u.diffuse, diffuse)
	setVec3(u.specular, specular)
	gl.Uniform1f(u.shininess, shininess)
	gl.Uniform1f(u.metalness, metalness)
	gl.Uniform1f(u.roughness, roughness)
	setVec3(u.emissive, emissive)
	setBool(u.doubleSided, settings.Side == scene.DoubleSide)

	r.bindOptional(u.useMap, u.mapSampler, unitMap, mapTex)
	r.bindOptional(u.useAOMap, u.aoMap, unitAOMap, aoTex)
	gl.Uniform1f(u.aoMapIntensity, aoAmount)
	r.bindOptional(u.useNormalMap, u.normalMap, unitNormalMap, normalTex)
	gl.Uniform2f(u.normalScale, normalAmt, normalAmt)

	r.bindOptional(u.useEmissiveMask, u.emissiveMaskMap, unitEmissiveMask, mask.Map)
	gl.Uniform1f(u.emissiveMaskContrast, mask.Contrast)
	gl.Uniform1f(u.emissiveMaskColorPower, mask.ColorPower)

	r.applyDisplacement(m, u.useDisplacementMap, u.displacementMap, u.displacementScale, u.displacementBias)

	useFog := fog != nil && settings.Fog
	setBool(u.useFog, useFog)
	if useFog {
		setVec3(u.fogColor, fog.Color)
		gl.Uniform1f(u.fogNear, fog.Near)
		gl.Uniform1f(u.fogFar, fog.Far)
	}
}

func (r *OpenGLRenderer) bindOptional(use, sampler int32, unit uint32, t *scene.Texture) {
	id := r.cache.texture(t)
	setBool(use, id != 0)
	if id == 0 {
		id = r.white
	}
	bindTexture(sampler, unit, id)
}

// glError reports the first pending GL error
func glError(stage string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", stage, code)
	}
	return nil
}

// Close releases all OpenGL resources
func (r *OpenGLRenderer) Close() {
	r.cache.release()
	for _, sm := range r.shadows {
		if sm != nil {
			sm.Delete()
		}
	}
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	r.scene.delete()
	r.depth.delete()
}
