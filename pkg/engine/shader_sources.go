package engine

// Shader sources for the scene renderer and the composer passes.
// Scene shaders output linear HDR colour; tone mapping and sRGB encoding
// happen once, in the output pass.

const maxSpotLights = 4

// Scene vertex shader: displacement, world position, shadow coordinates
const sceneVertexShader = `
#version 410 core
#define MAX_SPOT_LIGHTS 4

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;
uniform mat3 normalMatrix;

uniform bool      useDisplacementMap;
uniform sampler2D displacementMap;
uniform float     displacementScale;
uniform float     displacementBias;

uniform mat4 spotShadowMatrix[MAX_SPOT_LIGHTS];

out vec3  vWorldPosition;
out vec3  vNormal;
out vec2  vUV;
out float vViewDepth;
out vec4  vShadowCoord[MAX_SPOT_LIGHTS];

void main() {
    vec3 position = aPosition;
    if (useDisplacementMap) {
        position += normalize(aNormal) * (texture(displacementMap, aUV).x * displacementScale + displacementBias);
    }

    vec4 world = model * vec4(position, 1.0);
    vec4 eye = view * world;

    vWorldPosition = world.xyz;
    vNormal = normalMatrix * aNormal;
    vUV = aUV;
    vViewDepth = -eye.z;

    for (int i = 0; i < MAX_SPOT_LIGHTS; i++) {
        vShadowCoord[i] = spotShadowMatrix[i] * world;
    }

    gl_Position = projection * eye;
}
`

// Scene fragment shader: basic, lambert, phong and physical surfaces lit by
// one hemisphere light and up to four shadowed spot lights, with the
// emissive mask stage and linear fog
const sceneFragmentShader = `
#version 410 core
#define MAX_SPOT_LIGHTS 4
#define PI 3.141592653589793
#define RECIPROCAL_PI 0.3183098861837907
#define EPSILON 1e-6

#define MATERIAL_BASIC    0
#define MATERIAL_LAMBERT  1
#define MATERIAL_PHONG    2
#define MATERIAL_PHYSICAL 3

in vec3  vWorldPosition;
in vec3  vNormal;
in vec2  vUV;
in float vViewDepth;
in vec4  vShadowCoord[MAX_SPOT_LIGHTS];

out vec4 FragColor;

uniform vec3 cameraPosition;

// material
uniform int   materialKind;
uniform vec3  diffuse;
uniform vec3  specular;
uniform float shininess;
uniform float metalness;
uniform float roughness;
uniform vec3  emissive;
uniform bool  doubleSided;

uniform bool      useMap;
uniform sampler2D map;
uniform bool      useAOMap;
uniform sampler2D aoMap;
uniform float     aoMapIntensity;
uniform bool      useNormalMap;
uniform sampler2D normalMap;
uniform vec2      normalScale;

// emissive mask stage
uniform bool      useEmissiveMask;
uniform sampler2D emissiveMaskMap;
uniform float     emissiveMaskContrast;
uniform float     emissiveMaskColorPower;

// lights
uniform vec3  hemisphereSky;
uniform vec3  hemisphereGround;
uniform vec3  hemisphereDirection;

uniform int   spotLightCount;
uniform vec3  spotPosition[MAX_SPOT_LIGHTS];
uniform vec3  spotDirection[MAX_SPOT_LIGHTS];
uniform vec3  spotColor[MAX_SPOT_LIGHTS];
uniform float spotDistance[MAX_SPOT_LIGHTS];
uniform float spotDecay[MAX_SPOT_LIGHTS];
uniform float spotConeCos[MAX_SPOT_LIGHTS];
uniform float spotPenumbraCos[MAX_SPOT_LIGHTS];
uniform int   spotCastShadow[MAX_SPOT_LIGHTS];
uniform float spotShadowBias[MAX_SPOT_LIGHTS];
uniform float spotShadowTexel[MAX_SPOT_LIGHTS];
uniform sampler2DShadow spotShadowMap[MAX_SPOT_LIGHTS];

uniform bool receiveShadow;

// fog
uniform bool  useFog;
uniform vec3  fogColor;
uniform float fogNear;
uniform float fogFar;

float pow2(float x) { return x * x; }
float pow4(float x) { float x2 = x * x; return x2 * x2; }

vec3 F_Schlick(vec3 f0, float f90, float dotVH) {
    float fresnel = exp2((-5.55473 * dotVH - 6.98316) * dotVH);
    return f0 * (1.0 - fresnel) + f90 * fresnel;
}

vec3 BRDF_Lambert(vec3 color) {
    return RECIPROCAL_PI * color;
}

vec3 BRDF_BlinnPhong(vec3 L, vec3 V, vec3 N, vec3 specularColor, float power) {
    vec3 H = normalize(L + V);
    float dotNH = clamp(dot(N, H), 0.0, 1.0);
    float dotVH = clamp(dot(V, H), 0.0, 1.0);
    vec3 F = F_Schlick(specularColor, 1.0, dotVH);
    float D = RECIPROCAL_PI * (power * 0.5 + 1.0) * pow(dotNH, power);
    return F * (0.25 * D);
}

vec3 BRDF_GGX(vec3 L, vec3 V, vec3 N, vec3 f0, float rough) {
    float alpha = pow2(rough);
    float a2 = pow2(alpha);
    vec3 H = normalize(L + V);
    float dotNL = clamp(dot(N, L), 0.0, 1.0);
    float dotNV = clamp(dot(N, V), 0.0, 1.0);
    float dotNH = clamp(dot(N, H), 0.0, 1.0);
    float dotVH = clamp(dot(V, H), 0.0, 1.0);

    vec3 F = F_Schlick(f0, 1.0, dotVH);
    float gv = dotNL * sqrt(a2 + (1.0 - a2) * pow2(dotNV));
    float gl = dotNV * sqrt(a2 + (1.0 - a2) * pow2(dotNL));
    float Vis = 0.5 / max(gv + gl, EPSILON);
    float D = RECIPROCAL_PI * a2 / pow2(pow2(dotNH) * (a2 - 1.0) + 1.0);
    return F * (Vis * D);
}

float distanceAttenuation(float dist, float cutoff, float decay) {
    float falloff = 1.0 / max(pow(dist, decay), 0.01);
    if (cutoff > 0.0) {
        falloff *= pow2(clamp(1.0 - pow4(dist / cutoff), 0.0, 1.0));
    }
    return falloff;
}

float spotShadow(int i) {
    vec3 coord = vShadowCoord[i].xyz / vShadowCoord[i].w;
    coord = coord * 0.5 + 0.5;
    coord.z += spotShadowBias[i];

    if (coord.x < 0.0 || coord.x > 1.0 || coord.y < 0.0 || coord.y > 1.0 || coord.z > 1.0) {
        return 1.0;
    }

    float texel = spotShadowTexel[i];
    float lit = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            lit += texture(spotShadowMap[i], vec3(coord.xy + vec2(x, y) * texel, coord.z));
        }
    }
    return lit / 9.0;
}

vec3 perturbNormal(vec3 surfPos, vec3 N, vec3 mapN, float faceDirection) {
    vec3 q0 = dFdx(surfPos);
    vec3 q1 = dFdy(surfPos);
    vec2 st0 = dFdx(vUV);
    vec2 st1 = dFdy(vUV);

    vec3 q1perp = cross(q1, N);
    vec3 q0perp = cross(N, q0);
    vec3 T = q1perp * st0.x + q0perp * st1.x;
    vec3 B = q1perp * st0.y + q0perp * st1.y;

    float det = max(dot(T, T), dot(B, B));
    float scale = (det == 0.0) ? 0.0 : faceDirection * inversesqrt(det);
    return normalize(T * (mapN.x * scale) + B * (mapN.y * scale) + N * mapN.z);
}

void main() {
    vec3 base = diffuse;
    if (useMap) {
        base *= texture(map, vUV).rgb;
    }

    vec3 color;
    if (materialKind == MATERIAL_BASIC) {
        color = base;
    } else {
        float faceDirection = gl_FrontFacing ? 1.0 : -1.0;
        vec3 N = normalize(vNormal);
        if (doubleSided) {
            N *= faceDirection;
        }
        if (useNormalMap) {
            vec3 mapN = texture(normalMap, vUV).xyz * 2.0 - 1.0;
            mapN.xy *= normalScale;
            N = perturbNormal(vWorldPosition, N, mapN, faceDirection);
        }
        vec3 V = normalize(cameraPosition - vWorldPosition);

        vec3 diffuseColor = base;
        vec3 specularColor = specular;
        float rough = max(roughness, 0.0525);
        if (materialKind == MATERIAL_PHYSICAL) {
            diffuseColor = base * (1.0 - metalness);
            specularColor = mix(vec3(0.04), base, metalness);
        }

        vec3 directDiffuse = vec3(0.0);
        vec3 directSpecular = vec3(0.0);

        for (int i = 0; i < MAX_SPOT_LIGHTS; i++) {
            if (i >= spotLightCount) {
                break;
            }

            vec3 toLight = spotPosition[i] - vWorldPosition;
            float dist = length(toLight);
            vec3 L = toLight / max(dist, EPSILON);

            float angleCos = dot(L, spotDirection[i]);
            float cone = smoothstep(spotConeCos[i], spotPenumbraCos[i], angleCos);
            if (cone <= 0.0) {
                continue;
            }

            vec3 radiance = spotColor[i] * cone * distanceAttenuation(dist, spotDistance[i], spotDecay[i]);
            if (receiveShadow && spotCastShadow[i] != 0) {
                radiance *= spotShadow(i);
            }

            float dotNL = clamp(dot(N, L), 0.0, 1.0);
            vec3 irradiance = dotNL * radiance;

            directDiffuse += irradiance * BRDF_Lambert(diffuseColor);
            if (materialKind == MATERIAL_PHONG) {
                directSpecular += irradiance * BRDF_BlinnPhong(L, V, N, specularColor, shininess);
            } else if (materialKind == MATERIAL_PHYSICAL) {
                directSpecular += irradiance * BRDF_GGX(L, V, N, specularColor, rough);
            }
        }

        float hemi = dot(N, hemisphereDirection) * 0.5 + 0.5;
        vec3 indirectDiffuse = mix(hemisphereGround, hemisphereSky, hemi) * BRDF_Lambert(diffuseColor);
        if (useAOMap) {
            float ao = (texture(aoMap, vUV).r - 1.0) * aoMapIntensity + 1.0;
            indirectDiffuse *= ao;
        }

        color = directDiffuse + directSpecular + indirectDiffuse;
    }

    vec3 totalEmissive = emissive;
    if (useEmissiveMask) {
        vec3 mask = texture(emissiveMaskMap, vUV).rgb * emissiveMaskColorPower;
        mask = clamp(mix(vec3(0.5), mask, emissiveMaskContrast), 0.0, 1.0);
        totalEmissive = mix(totalEmissive, vec3(0.0), mask);
    }
    color += totalEmissive;

    if (useFog) {
        color = mix(color, fogColor, smoothstep(fogNear, fogFar, vViewDepth));
    }

    FragColor = vec4(color, 1.0);
}
`

// Depth only pass into a spot light shadow map
const depthVertexShader = `
#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 lightMVP;

uniform bool      useDisplacementMap;
uniform sampler2D displacementMap;
uniform float     displacementScale;
uniform float     displacementBias;

void main() {
    vec3 position = aPosition;
    if (useDisplacementMap) {
        position += normalize(aNormal) * (texture(displacementMap, aUV).x * displacementScale + displacementBias);
    }
    gl_Position = lightMVP * vec4(position, 1.0);
}
`

const depthFragmentShader = `
#version 410 core
void main() {}
`

// Full screen triangle pair shared by every composer pass
const quadVertexShader = `
#version 410 core
layout (location = 0) in vec2 aPosition;
layout (location = 1) in vec2 aUV;

out vec2 vUV;

void main() {
    vUV = aUV;
    gl_Position = vec4(aPosition, 0.0, 1.0);
}
`

// Keeps pixels brighter than the threshold
const highPassFragmentShader = `
#version 410 core
in vec2 vUV;
out vec4 FragColor;

uniform sampler2D source;
uniform float threshold;
uniform float smoothWidth;

void main() {
    vec4 texel = texture(source, vUV);
    float luma = dot(texel.rgb, vec3(0.299, 0.587, 0.114));
    float alpha = smoothstep(threshold, threshold + smoothWidth, luma);
    FragColor = mix(vec4(0.0), texel, alpha);
}
`

// One direction of a separable gaussian blur
const blurFragmentShader = `
#version 410 core
#define MAX_KERNEL_RADIUS 11

in vec2 vUV;
out vec4 FragColor;

uniform sampler2D source;
uniform vec2  invSize;
uniform vec2  direction;
uniform int   kernelRadius;
uniform float coefficients[MAX_KERNEL_RADIUS];

void main() {
    float weightSum = coefficients[0];
    vec3 sum = texture(source, vUV).rgb * weightSum;

    for (int i = 1; i < MAX_KERNEL_RADIUS; i++) {
        if (i >= kernelRadius) {
            break;
        }
        float w = coefficients[i];
        vec2 offset = direction * invSize * float(i);
        sum += (texture(source, vUV + offset).rgb + texture(source, vUV - offset).rgb) * w;
        weightSum += 2.0 * w;
    }

    FragColor = vec4(sum / weightSum, 1.0);
}
`

// Weighted sum of the blur mip chain
const bloomCompositeFragmentShader = `
#version 410 core
#define MIPS 5

in vec2 vUV;
out vec4 FragColor;

uniform sampler2D blur[MIPS];
uniform float bloomStrength;
uniform float bloomRadius;
uniform float bloomFactors[MIPS];
uniform vec3  bloomTints[MIPS];

float lerpBloomFactor(float factor) {
    return mix(factor, 1.2 - factor, bloomRadius);
}

void main() {
    vec4 sum = vec4(0.0);
    sum += lerpBloomFactor(bloomFactors[0]) * vec4(bloomTints[0], 1.0) * texture(blur[0], vUV);
    sum += lerpBloomFactor(bloomFactors[1]) * vec4(bloomTints[1], 1.0) * texture(blur[1], vUV);
    sum += lerpBloomFactor(bloomFactors[2]) * vec4(bloomTints[2], 1.0) * texture(blur[2], vUV);
    sum += lerpBloomFactor(bloomFactors[3]) * vec4(bloomTints[3], 1.0) * texture(blur[3], vUV);
    sum += lerpBloomFactor(bloomFactors[4]) * vec4(bloomTints[4], 1.0) * texture(blur[4], vUV);
    FragColor = bloomStrength * sum;
}
`

// Plain texture copy, used to blend the bloom back additively
const copyFragmentShader = `
#version 410 core
in vec2 vUV;
out vec4 FragColor;

uniform sampler2D source;
uniform float opacity;

void main() {
    FragColor = opacity * texture(source, vUV);
}
`

// base + bloom
const mixFragmentShader = `
#version 410 core
in vec2 vUV;
out vec4 FragColor;

uniform sampler2D baseTexture;
uniform sampler2D bloomTexture;

void main() {
    FragColor = texture(baseTexture, vUV) + vec4(1.0) * texture(bloomTexture, vUV);
}
`

// ACES filmic tone mapping and sRGB encoding
const outputFragmentShader = `
#version 410 core
in vec2 vUV;
out vec4 FragColor;

uniform sampler2D source;
uniform float exposure;

vec3 RRTAndODTFit(vec3 v) {
    vec3 a = v * (v + 0.0245786) - 0.000090537;
    vec3 b = v * (0.983729 * v + 0.4329510) + 0.238081;
    return a / b;
}

vec3 ACESFilmic(vec3 color) {
    const mat3 inputMat = mat3(
        vec3(0.59719, 0.07600, 0.02840),
        vec3(0.35458, 0.90834, 0.13383),
        vec3(0.04823, 0.01566, 0.83777)
    );
    const mat3 outputMat = mat3(
        vec3( 1.60475, -0.10208, -0.00327),
        vec3(-0.53108,  1.10813, -0.07276),
        vec3(-0.07367, -0.00605,  1.07602)
    );
    color *= exposure / 0.6;
    color = inputMat * color;
    color = RRTAndODTFit(color);
    color = outputMat * color;
    return clamp(color, 0.0, 1.0);
}

vec3 linearToSRGB(vec3 c) {
    vec3 lo = c * 12.92;
    vec3 hi = pow(c, vec3(0.41666)) * 1.055 - vec3(0.055);
    return mix(hi, lo, vec3(lessThanEqual(c, vec3(0.0031308))));
}

void main() {
    vec4 texel = texture(source, vUV);
    FragColor = vec4(linearToSRGB(ACESFilmic(texel.rgb)), 1.0);
}
`
