package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decker502/beerclink/internal/particle"
)

// ErrInvalidConfig 配置校验失败时返回的哨兵错误
var ErrInvalidConfig = errors.New("invalid simulation config")

// SimulationConfig 碰杯模拟的完整配置
//
// 替代原先散落在界面滑块上的全局状态：所有可调参数都在这里显式传入模拟。
//
// 配置文件位置: data/simulation.yaml
type SimulationConfig struct {
	// Seed 随机数种子（0 表示由调用方决定）
	Seed int64 `yaml:"seed"`

	Motion   MotionConfig   `yaml:"motion"`
	Liquid   LiquidConfig   `yaml:"liquid"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Emitters EmittersConfig `yaml:"emitters"`
}

// MotionConfig 酒杯运动参数（对应原界面的距离/速度/重力/倾斜滑块）
type MotionConfig struct {
	// StartDistance 两杯初始间距 [20, 100]
	StartDistance float64 `yaml:"startDistance"`
	// Speed 靠近速度（单位/秒）[1, 100]
	Speed float64 `yaml:"speed"`
	// Gravity 世界重力（Y 轴，负值向下）[-30, 0]
	Gravity float64 `yaml:"gravity"`

	LeftTilt  TiltConfig `yaml:"leftTilt"`
	RightTilt TiltConfig `yaml:"rightTilt"`

	// SeparationDistance 碰撞后两杯距中心的距离
	SeparationDistance float64 `yaml:"separationDistance"`
	// SeparationFactor 分离速度 = Speed * SeparationFactor
	SeparationFactor float64 `yaml:"separationFactor"`
	// ResetDelay 碰撞后自动复位的延迟（秒）
	ResetDelay float64 `yaml:"resetDelay"`

	// IntensityPerSpeed 碰撞强度 = 相对速度 * IntensityPerSpeed
	IntensityPerSpeed float64 `yaml:"intensityPerSpeed"`
	// MaxIntensity 碰撞强度上限
	MaxIntensity float64 `yaml:"maxIntensity"`

	// GravityRestore 碰撞后重力恢复阶段，按顺序执行
	GravityRestore []GravityStageConfig `yaml:"gravityRestore"`
}

// TiltConfig 单个酒杯的倾斜角（度）
type TiltConfig struct {
	X float64 `yaml:"x"` // 前后倾斜 [-30, 30]
	Z float64 `yaml:"z"` // 左右倾斜 [-30, 30]
}

// GravityStageConfig 重力恢复阶段
type GravityStageConfig struct {
	// Duration 阶段时长（秒）
	Duration float64 `yaml:"duration"`
	// Fraction 阶段结束时的重力（相对于 MotionConfig.Gravity 的比例）
	Fraction float64 `yaml:"fraction"`
}

// LiquidConfig 液面响应参数
type LiquidConfig struct {
	// ReductionFactor 液面下降量 = 强度 * ReductionFactor
	ReductionFactor float64 `yaml:"reductionFactor"`
	// MinLevel 液面下限，保证酒不会洒空
	MinLevel float64 `yaml:"minLevel"`
	// TransitionDuration 液面下降动画时长（秒）
	TransitionDuration float64 `yaml:"transitionDuration"`
	// GlassHeight 杯身高度，用于把液面比例换算成泡沫高度
	GlassHeight float64 `yaml:"glassHeight"`

	// 泡沫浮动（纯装饰）
	BobAmplitude float64 `yaml:"bobAmplitude"`
	BobFrequency float64 `yaml:"bobFrequency"`

	// 泡沫晃动弹簧（纯装饰）
	SloshFrequency float64 `yaml:"sloshFrequency"`
	SloshDamping   float64 `yaml:"sloshDamping"`
	SloshGain      float64 `yaml:"sloshGain"`
}

// PhysicsConfig 刚体参数
type PhysicsConfig struct {
	MugHalfWidth  float64 `yaml:"mugHalfWidth"`
	MugHalfHeight float64 `yaml:"mugHalfHeight"`
	TableY        float64 `yaml:"tableY"`
	Density       float64 `yaml:"density"`
	Restitution   float64 `yaml:"restitution"`
	Friction      float64 `yaml:"friction"`

	VelocityIterations int `yaml:"velocityIterations"`
	PositionIterations int `yaml:"positionIterations"`
}

// EmittersConfig 每个酒杯的两个粒子发射器
type EmittersConfig struct {
	Splash particle.EmitterConfig `yaml:"splash"`
	Foam   particle.EmitterConfig `yaml:"foam"`
}

// DefaultSimulationConfig 返回默认配置
// 数值取自原版场景：间距 40、速度 10、重力 -15、杯高 30
func DefaultSimulationConfig() *SimulationConfig {
	return &SimulationConfig{
		Motion: MotionConfig{
			StartDistance:      40,
			Speed:              10,
			Gravity:            -15,
			SeparationDistance: 5,
			SeparationFactor:   2.5,
			ResetDelay:         3.0,
			IntensityPerSpeed:  0.05,
			MaxIntensity:       2.0,
			GravityRestore: []GravityStageConfig{
				{Duration: 0.1, Fraction: 0},
				{Duration: 0.4, Fraction: 1},
			},
		},
		Liquid: LiquidConfig{
			ReductionFactor:    0.25,
			MinLevel:           0.35,
			TransitionDuration: 1.2,
			GlassHeight:        30,
			BobAmplitude:       0.1,
			BobFrequency:       2.0,
			SloshFrequency:     6.0,
			SloshDamping:       0.3,
			SloshGain:          1.5,
		},
		Physics: PhysicsConfig{
			MugHalfWidth:       10,
			MugHalfHeight:      15,
			TableY:             0,
			Density:            1,
			Restitution:        1.0,
			Friction:           0.001,
			VelocityIterations: 8,
			PositionIterations: 3,
		},
		Emitters: EmittersConfig{
			Splash: particle.EmitterConfig{
				Capacity:        30,
				BaseCount:       50,
				Radius:          "3",
				Lifetime:        "[0.8 1.6]",
				ConeSpeed:       "[6 12]",
				ConeAngle:       "40",
				DirectionalGain: "6",
				BaseScale:       "0.3",
				ShrinkFactor:    "0.5",
				Gravity:         "20",
			},
			Foam: particle.EmitterConfig{
				Capacity:        50,
				BaseCount:       20,
				Radius:          "8",
				Lifetime:        "[1.0 2.0]",
				ConeSpeed:       "[1 3]",
				ConeAngle:       "25",
				DirectionalGain: "1.5",
				BaseScale:       "0.2",
				ShrinkFactor:    "0.8",
				Gravity:         "4",
			},
		},
	}
}

// LoadSimulationConfig 加载模拟配置
//
// 从指定路径加载 YAML 配置文件。未出现在文件中的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/simulation.yaml"）
//
// 返回:
//   - *SimulationConfig: 加载成功后的配置结构
//   - error: 读取、解析或校验失败时返回错误
func LoadSimulationConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	return ParseSimulationConfig(data)
}

// ParseSimulationConfig 从 YAML 字节解析配置（缺省字段使用默认值）
func ParseSimulationConfig(data []byte) (*SimulationConfig, error) {
	cfg := DefaultSimulationConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 验证配置有效性
//
// 检查配置值是否在合理范围内：
//   - 间距、速度、重力与倾斜角在原界面滑块的范围内
//   - 液面下限在 (0, 1) 内，动画时长为正
//   - 两个发射器配置可以被解析
//
// 返回:
//   - error: 验证失败时返回包装了 ErrInvalidConfig 的错误，成功返回 nil
func (c *SimulationConfig) Validate() error {
	// NaN 会通过所有区间比较，先统一拒绝非有限值
	if err := c.checkFinite(); err != nil {
		return err
	}

	m := c.Motion
	if m.StartDistance < 20 || m.StartDistance > 100 {
		return fmt.Errorf("%w: startDistance %.1f out of [20, 100]", ErrInvalidConfig, m.StartDistance)
	}
	if m.Speed <= 0 || m.Speed > 100 {
		return fmt.Errorf("%w: speed %.1f out of (0, 100]", ErrInvalidConfig, m.Speed)
	}
	if m.Gravity < -30 || m.Gravity > 0 {
		return fmt.Errorf("%w: gravity %.1f out of [-30, 0]", ErrInvalidConfig, m.Gravity)
	}
	tilts := []struct {
		name string
		tilt TiltConfig
	}{
		{"leftTilt", m.LeftTilt},
		{"rightTilt", m.RightTilt},
	}
	for _, t := range tilts {
		if t.tilt.X < -30 || t.tilt.X > 30 || t.tilt.Z < -30 || t.tilt.Z > 30 {
			return fmt.Errorf("%w: %s (%.1f, %.1f) out of [-30, 30]", ErrInvalidConfig, t.name, t.tilt.X, t.tilt.Z)
		}
	}
	if m.SeparationDistance < 0 {
		return fmt.Errorf("%w: separationDistance %.1f must be >= 0", ErrInvalidConfig, m.SeparationDistance)
	}
	if m.SeparationFactor < 0 || m.ResetDelay <= 0 {
		return fmt.Errorf("%w: separationFactor must be >= 0 and resetDelay > 0", ErrInvalidConfig)
	}
	if m.IntensityPerSpeed <= 0 || m.MaxIntensity <= 0 {
		return fmt.Errorf("%w: intensityPerSpeed and maxIntensity must be > 0", ErrInvalidConfig)
	}
	for i, stage := range m.GravityRestore {
		if stage.Duration <= 0 {
			return fmt.Errorf("%w: gravityRestore[%d] duration must be > 0", ErrInvalidConfig, i)
		}
	}

	l := c.Liquid
	if l.MinLevel <= 0 || l.MinLevel >= 1 {
		return fmt.Errorf("%w: minLevel %.2f out of (0, 1)", ErrInvalidConfig, l.MinLevel)
	}
	if l.ReductionFactor < 0 || l.TransitionDuration <= 0 || l.GlassHeight <= 0 {
		return fmt.Errorf("%w: reductionFactor >= 0, transitionDuration > 0 and glassHeight > 0 required", ErrInvalidConfig)
	}

	p := c.Physics
	if p.MugHalfWidth <= 0 || p.MugHalfHeight <= 0 || p.Density <= 0 {
		return fmt.Errorf("%w: mug dimensions and density must be > 0", ErrInvalidConfig)
	}
	if p.VelocityIterations < 1 || p.PositionIterations < 1 {
		return fmt.Errorf("%w: solver iterations must be >= 1", ErrInvalidConfig)
	}
	if 2*p.MugHalfWidth >= m.StartDistance {
		return fmt.Errorf("%w: startDistance %.1f leaves mugs overlapping (width %.1f)", ErrInvalidConfig, m.StartDistance, 2*p.MugHalfWidth)
	}

	if _, err := c.EmitterParams(particle.KindSplash); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.EmitterParams(particle.KindFoam); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

type namedValue struct {
	name string
	v    float64
}

// checkFinite 按字段顺序检查所有浮点参数都是有限值
func (c *SimulationConfig) checkFinite() error {
	m, l, p := c.Motion, c.Liquid, c.Physics
	fields := []namedValue{
		{"motion.startDistance", m.StartDistance},
		{"motion.speed", m.Speed},
		{"motion.gravity", m.Gravity},
		{"motion.leftTilt.x", m.LeftTilt.X},
		{"motion.leftTilt.z", m.LeftTilt.Z},
		{"motion.rightTilt.x", m.RightTilt.X},
		{"motion.rightTilt.z", m.RightTilt.Z},
		{"motion.separationDistance", m.SeparationDistance},
		{"motion.separationFactor", m.SeparationFactor},
		{"motion.resetDelay", m.ResetDelay},
		{"motion.intensityPerSpeed", m.IntensityPerSpeed},
		{"motion.maxIntensity", m.MaxIntensity},
		{"liquid.reductionFactor", l.ReductionFactor},
		{"liquid.minLevel", l.MinLevel},
		{"liquid.transitionDuration", l.TransitionDuration},
		{"liquid.glassHeight", l.GlassHeight},
		{"liquid.bobAmplitude", l.BobAmplitude},
		{"liquid.bobFrequency", l.BobFrequency},
		{"liquid.sloshFrequency", l.SloshFrequency},
		{"liquid.sloshDamping", l.SloshDamping},
		{"liquid.sloshGain", l.SloshGain},
		{"physics.mugHalfWidth", p.MugHalfWidth},
		{"physics.mugHalfHeight", p.MugHalfHeight},
		{"physics.tableY", p.TableY},
		{"physics.density", p.Density},
		{"physics.restitution", p.Restitution},
		{"physics.friction", p.Friction},
	}
	for i, stage := range m.GravityRestore {
		fields = append(fields,
			namedValue{fmt.Sprintf("motion.gravityRestore[%d].duration", i), stage.Duration},
			namedValue{fmt.Sprintf("motion.gravityRestore[%d].fraction", i), stage.Fraction},
		)
	}

	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.name, f.v)
		}
	}
	return nil
}

// EmitterParams 解析指定类型发射器的配置
func (c *SimulationConfig) EmitterParams(kind particle.Kind) (particle.EmitterParams, error) {
	switch kind {
	case particle.KindSplash:
		return particle.Resolve(kind, c.Emitters.Splash)
	case particle.KindFoam:
		return particle.Resolve(kind, c.Emitters.Foam)
	default:
		return particle.EmitterParams{}, fmt.Errorf("unknown emitter kind %q", kind)
	}
}

// Clone 返回配置的深拷贝
func (c *SimulationConfig) Clone() *SimulationConfig {
	cp := *c
	cp.Motion.GravityRestore = append([]GravityStageConfig(nil), c.Motion.GravityRestore...)
	return &cp
}
