package simulation

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/systems"
)

// MugView 单个酒杯的渲染数据
type MugView struct {
	Side     components.MugSide
	Position mgl64.Vec3 // 杯身中心
	Angle    float64    // 刚体转角（弧度）
	TiltX    float64    // 前后倾斜（度）
	TiltZ    float64    // 左右倾斜（度）

	Level       float64
	TargetLevel float64
	LiquidPhase components.LiquidPhase

	FoamY        float64 // 相对杯底
	FoamSlosh    float64
	FoamRotation float64
}

// ParticleView 单个活跃粒子的渲染数据
type ParticleView struct {
	Kind     particle.Kind
	Position mgl64.Vec3
	Opacity  float64
	Scale    float64
}

// EmitterStats 发射器累计统计
type EmitterStats struct {
	Kind      particle.Kind
	Side      components.MugSide
	Capacity  int
	Active    int
	Triggers  int
	Activated int
	Dropped   int
	Expired   int
}

// Snapshot 某一帧结束时的只读状态
type Snapshot struct {
	Time    float64
	Phase   systems.ClinkPhase
	Gravity float64
	Clinks  int

	// HalfWidth / HalfHeight 酒杯尺寸，便于渲染
	HalfWidth  float64
	HalfHeight float64
	TableY     float64

	Mugs      [2]MugView
	Particles []ParticleView
	Emitters  []EmitterStats
}

// ActiveParticles 返回活跃粒子总数
func (s Snapshot) ActiveParticles() int {
	return len(s.Particles)
}
