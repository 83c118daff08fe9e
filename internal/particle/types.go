// Package particle provides the pooled particle data structures and the
// emitter profile configuration used by the splash and foam effects.
//
// Emitter profiles are stored in YAML. Numeric fields use strings so that a
// profile can declare either a fixed value or a random range:
//   - Fixed value: "1.2"
//   - Range: "[0.6 1.2]" (random value between min and max)
package particle

import "github.com/go-gl/mathgl/mgl64"

// Particle is a single pooled particle entity.
// Particles are allocated once by a Pool and reused for the process lifetime.
type Particle struct {
	Position mgl64.Vec3 // World position
	Velocity mgl64.Vec3 // Units per second; gravity accumulates into Y

	Age         float64 // Seconds since activation
	MaxLifetime float64 // Seconds, fixed at activation

	BaseScale float64 // Original visual size, restored on release
	Scale     float64 // Current visual size
	Opacity   float64 // 0 = invisible, 1 = fully opaque

	Active bool

	index int // slot in the owning pool
}

// Kind 发射器类型
type Kind string

const (
	// KindSplash 液体飞溅粒子
	KindSplash Kind = "splash"
	// KindFoam 泡沫粒子
	KindFoam Kind = "foam"
)

// EmitterConfig is the YAML form of an emitter profile.
// Range-capable fields are parsed by Resolve.
type EmitterConfig struct {
	Capacity  int `yaml:"capacity"`  // Pool size, fixed at construction
	BaseCount int `yaml:"baseCount"` // Particles requested per unit intensity

	Radius          string `yaml:"radius"`          // Spawn disk radius around the origin
	Lifetime        string `yaml:"lifetime"`        // Seconds, usually a range
	ConeSpeed       string `yaml:"coneSpeed"`       // Launch speed per unit intensity
	ConeAngle       string `yaml:"coneAngle"`       // Half-angle of the launch cone (degrees)
	DirectionalGain string `yaml:"directionalGain"` // Weight of the collision direction
	BaseScale       string `yaml:"baseScale"`       // Visual size
	ShrinkFactor    string `yaml:"shrinkFactor"`    // Scale lost over the lifetime (0-1)
	Gravity         string `yaml:"gravity"`         // Downward acceleration
}

// EmitterParams is a resolved emitter profile with every range expanded.
type EmitterParams struct {
	Kind      Kind
	Capacity  int
	BaseCount int

	Radius float64

	LifetimeMin float64
	LifetimeMax float64

	ConeSpeedMin float64
	ConeSpeedMax float64
	ConeAngle    float64

	DirectionalGain float64

	BaseScaleMin float64
	BaseScaleMax float64

	ShrinkFactor float64
	Gravity      float64
}
