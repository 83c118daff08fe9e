// Package simulation 组装碰杯场景的全部系统，并以固定顺序逐帧推进
//
// Simulation 不依赖任何渲染或音频后端：桌面版（ebiten）和终端版（tcell）
// 都只通过 Tick / Start / Reset / Trigger / UpdateConfig 驱动它，
// 并通过 Snapshot 读取渲染数据。
package simulation

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/ecs"
	"github.com/decker502/beerclink/pkg/systems"
)

// splashRimOffset 飞溅发射点相对杯身中心向接触侧偏移的比例（乘以半宽）
const splashRimOffset = 0.5

// Simulation 碰杯模拟
type Simulation struct {
	cfg     *config.SimulationConfig
	seed    int64
	rng     *rand.Rand
	sounder Sounder

	em *ecs.EntityManager

	physics   *systems.PhysicsSystem
	gravity   *systems.GravitySchedule
	clink     *systems.ClinkSystem
	liquid    *systems.LiquidSystem
	foam      *systems.FoamSystem
	particles *systems.ParticleSystem

	splashEmitter *systems.SplashEmitter
	foamEmitter   *systems.SplashEmitter

	mugs [2]ecs.EntityID // 按 MugSide 索引

	now    float64
	clinks int
}

// New 创建模拟
//
// 参数:
//   - cfg: 模拟配置（nil 表示默认配置），会被复制，调用方之后的修改不影响模拟
//   - opts: 构造选项
//
// 返回:
//   - *Simulation: 处于 ready 阶段、两杯满杯的模拟
//   - error: 配置校验失败时返回包装了 config.ErrInvalidConfig 的错误
func New(cfg *config.SimulationConfig, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.DefaultSimulationConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}

	s := &Simulation{
		cfg:     cfg.Clone(),
		seed:    cfg.Seed,
		sounder: nopSounder{},
		em:      ecs.NewEntityManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == 0 {
		s.seed = 1
	}
	if s.sounder == nil {
		s.sounder = nopSounder{}
	}
	s.rng = rand.New(rand.NewSource(s.seed))

	splashParams, err := s.cfg.EmitterParams(particle.KindSplash)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve splash emitter: %w", err)
	}
	foamParams, err := s.cfg.EmitterParams(particle.KindFoam)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve foam emitter: %w", err)
	}
	s.splashEmitter = systems.NewSplashEmitter(splashParams, s.rng)
	s.foamEmitter = systems.NewSplashEmitter(foamParams, s.rng)

	s.physics = systems.NewPhysicsSystem(s.em, s.cfg.Physics, s.cfg.Motion.Gravity)
	s.gravity = systems.NewGravitySchedule()
	s.clink = systems.NewClinkSystem(s.em, s.physics, s.gravity, s.cfg.Motion, s.cfg.Physics.MugHalfWidth)

	controller := systems.NewLiquidResponseController(s.cfg.Liquid)
	s.liquid = systems.NewLiquidSystem(s.em, controller)
	s.foam = systems.NewFoamSystem(s.em, controller, s.cfg.Liquid)
	s.particles = systems.NewParticleSystem(s.em)

	half := s.cfg.Motion.StartDistance / 2
	s.mugs[components.MugLeft] = s.createMug(components.MugLeft, -half, s.cfg.Motion.LeftTilt)
	s.mugs[components.MugRight] = s.createMug(components.MugRight, half, s.cfg.Motion.RightTilt)
	s.clink.SetMugs(s.mugs[components.MugLeft], s.mugs[components.MugRight])

	s.clink.Reset()
	s.foam.Reset()

	log.Printf("[Simulation] created (seed %d, %d entities)", s.seed, s.em.EntityCount())
	return s, nil
}

// createMug 创建酒杯实体及其液面、泡沫、两个发射器与刚体
func (s *Simulation) createMug(side components.MugSide, x float64, tilt config.TiltConfig) ecs.EntityID {
	id := s.em.CreateEntity()

	splash := &components.EmitterComponent{
		Kind:   particle.KindSplash,
		Owner:  id,
		Pool:   s.splashEmitter.NewPool(),
		Params: s.splashEmitter.Params(),
	}
	foamEmitter := &components.EmitterComponent{
		Kind:   particle.KindFoam,
		Owner:  id,
		Pool:   s.foamEmitter.NewPool(),
		Params: s.foamEmitter.Params(),
	}

	mug := &components.MugComponent{
		Side:        side,
		TiltX:       tilt.X,
		TiltZ:       tilt.Z,
		Foam:        &components.FoamComponent{},
		Liquid:      components.NewLiquidComponent(s.cfg.Liquid.GlassHeight),
		Splash:      splash,
		FoamEmitter: foamEmitter,
	}
	s.em.AddComponent(id, mug)
	s.em.AddComponent(id, mug.Liquid)
	s.em.AddComponent(id, &components.PositionComponent{})

	// 每个发射器是独立实体，ParticleSystem 按实体遍历
	for _, emitter := range []*components.EmitterComponent{splash, foamEmitter} {
		s.em.AddComponent(s.em.CreateEntity(), emitter)
	}

	s.physics.AddMug(id, x, tilt.Z)
	return id
}

// Tick 推进模拟 dt 秒
//
// 固定顺序：
//  1. 碰撞判定
//  2. 碰撞时触发液面响应、飞溅与音效
//  3. 粒子积分（本帧刚激活的粒子也参与）
//  4. 液面、泡沫、重力调度与物理世界
//
// dt <= 0、NaN 或无穷大时不做任何事。
func (s *Simulation) Tick(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	s.now += dt

	if hit, ok := s.clink.DetectCollision(); ok {
		s.applyClink(hit.Intensity)
	}

	s.particles.Update(dt)

	s.liquid.Update(s.now)
	s.foam.Update(dt, s.now)
	if resetDue := s.clink.Update(dt); resetDue {
		s.Reset()
	}
}

// Start 开始相向运动，仅在 ready 阶段有效
func (s *Simulation) Start() bool {
	return s.clink.Start()
}

// Reset 两杯回到起点、满杯，重力恢复为配置值
//
// 已经飞出的粒子保留，按各自寿命自然消失。
func (s *Simulation) Reset() {
	s.clink.Reset()
	s.liquid.ResetAll()
	s.foam.Reset()
	log.Printf("[Simulation] reset at t=%.2f", s.now)
}

// Trigger 在两杯当前位置手动触发一次碰杯效果（不改变运动阶段）
//
// 返回:
//   - int: 本次激活的粒子总数
func (s *Simulation) Trigger(intensity float64) int {
	if math.IsNaN(intensity) || intensity < 0 {
		intensity = 0
	}
	return s.applyClink(intensity)
}

// UpdateConfig 替换可调参数
//
// 新配置先校验，失败时原配置保持不变。
// 间距与倾斜只在 ready 阶段立即生效；粒子池容量与刚体尺寸在创建后固定。
func (s *Simulation) UpdateConfig(cfg *config.SimulationConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	next := cfg.Clone()
	if next.Emitters.Splash.Capacity != s.cfg.Emitters.Splash.Capacity ||
		next.Emitters.Foam.Capacity != s.cfg.Emitters.Foam.Capacity {
		log.Printf("[Simulation] emitter capacity is fixed at creation, keeping %d/%d",
			s.cfg.Emitters.Splash.Capacity, s.cfg.Emitters.Foam.Capacity)
		next.Emitters.Splash.Capacity = s.cfg.Emitters.Splash.Capacity
		next.Emitters.Foam.Capacity = s.cfg.Emitters.Foam.Capacity
	}
	next.Physics = s.cfg.Physics

	splashParams, err := next.EmitterParams(particle.KindSplash)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	foamParams, err := next.EmitterParams(particle.KindFoam)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	s.cfg = next
	s.splashEmitter = systems.NewSplashEmitter(splashParams, s.rng)
	s.foamEmitter = systems.NewSplashEmitter(foamParams, s.rng)

	for side, id := range s.mugs {
		mug, _ := ecs.GetComponent[*components.MugComponent](s.em, id)
		tilt := next.Motion.LeftTilt
		if components.MugSide(side) == components.MugRight {
			tilt = next.Motion.RightTilt
		}
		mug.TiltX = tilt.X
		mug.TiltZ = tilt.Z
		mug.Splash.Params = splashParams
		mug.FoamEmitter.Params = foamParams
	}

	s.liquid.Controller().SetConfig(next.Liquid)
	s.foam.SetConfig(next.Liquid)
	s.clink.SetMotion(next.Motion)

	log.Printf("[Simulation] config updated: distance %.0f, speed %.0f, gravity %.1f",
		next.Motion.StartDistance, next.Motion.Speed, next.Motion.Gravity)
	return nil
}

// Config 返回当前配置的副本
func (s *Simulation) Config() *config.SimulationConfig {
	return s.cfg.Clone()
}

// Phase 返回当前运动阶段
func (s *Simulation) Phase() systems.ClinkPhase {
	return s.clink.Phase()
}

// Now 返回模拟时钟（秒）
func (s *Simulation) Now() float64 {
	return s.now
}

// Seed 返回实际使用的随机数种子
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Clinks 返回碰杯（含手动触发）次数
func (s *Simulation) Clinks() int {
	return s.clinks
}

// applyClink 对两个酒杯应用一次碰撞：液面下降、泡沫晃动、飞溅与泡沫粒子、音效
func (s *Simulation) applyClink(intensity float64) int {
	s.clinks++
	activated := 0
	controller := s.liquid.Controller()

	for _, id := range s.mugs {
		mug, _ := ecs.GetComponent[*components.MugComponent](s.em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.em, id)

		controller.OnCollision(mug.Liquid, intensity, s.now)

		dir := mug.Side.Direction()
		s.foam.Impulse(mug.Foam, intensity, dir)

		rim := pos.Pos.Add(mgl64.Vec3{
			dir * s.cfg.Physics.MugHalfWidth * splashRimOffset,
			controller.FoamBaseY(mug.Liquid) - s.cfg.Physics.MugHalfHeight,
			0,
		})
		direction := mgl64.Vec3{dir, 0, 0}
		activated += s.splashEmitter.Emit(mug.Splash, rim, intensity, &direction)
		activated += s.foamEmitter.Emit(mug.FoamEmitter, rim, intensity, nil)
	}

	s.sounder.PlayClink(intensity)
	log.Printf("[Simulation] clink #%d intensity %.2f, %d particles", s.clinks, intensity, activated)
	return activated
}

// Snapshot 返回当前状态的只读副本
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Time:       s.now,
		Phase:      s.clink.Phase(),
		Gravity:    s.physics.Gravity(),
		Clinks:     s.clinks,
		HalfWidth:  s.cfg.Physics.MugHalfWidth,
		HalfHeight: s.cfg.Physics.MugHalfHeight,
		TableY:     s.cfg.Physics.TableY,
	}

	for side, id := range s.mugs {
		mug, _ := ecs.GetComponent[*components.MugComponent](s.em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.em, id)

		snap.Mugs[side] = MugView{
			Side:         mug.Side,
			Position:     pos.Pos,
			Angle:        pos.Angle,
			TiltX:        mug.TiltX,
			TiltZ:        mug.TiltZ,
			Level:        mug.Liquid.Level,
			TargetLevel:  mug.Liquid.TargetLevel,
			LiquidPhase:  mug.Liquid.Phase,
			FoamY:        mug.Foam.Y,
			FoamSlosh:    mug.Foam.Slosh,
			FoamRotation: mug.Foam.Rotation,
		}

		for _, emitter := range []*components.EmitterComponent{mug.Splash, mug.FoamEmitter} {
			snap.Emitters = append(snap.Emitters, EmitterStats{
				Kind:      emitter.Kind,
				Side:      mug.Side,
				Capacity:  emitter.Pool.Capacity(),
				Active:    emitter.Pool.ActiveCount(),
				Triggers:  emitter.Triggers,
				Activated: emitter.Activated,
				Dropped:   emitter.Dropped,
				Expired:   emitter.Expired,
			})
			emitter.Pool.Each(func(pt *particle.Particle) {
				snap.Particles = append(snap.Particles, ParticleView{
					Kind:     emitter.Kind,
					Position: pt.Position,
					Opacity:  pt.Opacity,
					Scale:    pt.Scale,
				})
			})
		}
	}

	return snap
}
