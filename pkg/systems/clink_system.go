package systems

import (
	"log"
	"math"

	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/ecs"
)

// ClinkPhase 碰杯运动阶段
type ClinkPhase int

const (
	// PhaseReady 两杯静止，等待开始
	PhaseReady ClinkPhase = iota
	// PhaseApproaching 两杯相向运动
	PhaseApproaching
	// PhaseSeparating 碰撞后分开，等待自动复位
	PhaseSeparating
)

// String 返回阶段名称
func (p ClinkPhase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseApproaching:
		return "approaching"
	case PhaseSeparating:
		return "separating"
	default:
		return "unknown"
	}
}

// ClinkCollision 一次已确认的碰杯
type ClinkCollision struct {
	Event     CollisionEvent
	Intensity float64
}

// ClinkSystem 驱动两个酒杯的相向运动、碰撞判定与碰撞后的分离
//
// 每帧调用顺序：
//  1. DetectCollision（帧开头，使用上一帧物理步进后的状态）
//  2. Update（帧末尾，设置速度、推进重力调度与物理世界）
//
// 碰撞只在 PhaseApproaching 阶段判定，每次接近最多产生一次碰撞。
type ClinkSystem struct {
	em      *ecs.EntityManager
	physics *PhysicsSystem
	gravity *GravitySchedule

	motion    config.MotionConfig
	halfWidth float64

	left, right ecs.EntityID

	phase      ClinkPhase
	resetTimer float64
}

// NewClinkSystem 创建碰杯运动系统
//
// 参数:
//   - em: 实体管理器（读取 MugComponent 的倾斜角）
//   - physics: 物理系统
//   - gravity: 重力恢复调度
//   - motion: 运动参数
//   - halfWidth: 酒杯半宽，用于几何碰撞判定与分离位置
//
// 返回:
//   - *ClinkSystem: 系统实例（需调用 SetMugs 绑定酒杯）
func NewClinkSystem(em *ecs.EntityManager, physics *PhysicsSystem, gravity *GravitySchedule, motion config.MotionConfig, halfWidth float64) *ClinkSystem {
	return &ClinkSystem{
		em:        em,
		physics:   physics,
		gravity:   gravity,
		motion:    motion,
		halfWidth: halfWidth,
		phase:     PhaseReady,
	}
}

// SetMugs 绑定左右酒杯实体
func (cs *ClinkSystem) SetMugs(left, right ecs.EntityID) {
	cs.left = left
	cs.right = right
}

// SetMotion 替换运动参数
//
// 处于 PhaseReady 时立即按新间距与倾斜摆放酒杯；
// 重力在没有恢复调度运行时立即生效。
func (cs *ClinkSystem) SetMotion(motion config.MotionConfig) {
	cs.motion = motion
	if !cs.gravity.Active() && cs.phase != PhaseSeparating {
		cs.physics.SetGravity(motion.Gravity)
	}
	if cs.phase == PhaseReady {
		cs.placeAtStart()
	}
}

// Phase 返回当前阶段
func (cs *ClinkSystem) Phase() ClinkPhase {
	return cs.phase
}

// ResetTimer 返回距离自动复位的剩余时间（仅 PhaseSeparating 有意义）
func (cs *ClinkSystem) ResetTimer() float64 {
	return cs.resetTimer
}

// Start 开始相向运动，仅在 PhaseReady 有效
func (cs *ClinkSystem) Start() bool {
	if cs.phase != PhaseReady {
		return false
	}
	cs.phase = PhaseApproaching
	cs.driveApproach()
	log.Printf("[ClinkSystem] approaching at speed %.1f", cs.motion.Speed)
	return true
}

// Reset 回到 PhaseReady：酒杯放回起始位置，取消重力调度并恢复配置重力
func (cs *ClinkSystem) Reset() {
	cs.phase = PhaseReady
	cs.resetTimer = 0
	cs.gravity.Cancel()
	cs.physics.SetGravity(cs.motion.Gravity)
	cs.placeAtStart()
	cs.physics.DrainContacts()
}

// Intensity 把相对速度换算为碰撞强度：relVel * IntensityPerSpeed，上限 MaxIntensity
func (cs *ClinkSystem) Intensity(relativeVelocity float64) float64 {
	if math.IsNaN(relativeVelocity) || relativeVelocity < 0 {
		return 0
	}
	return math.Min(relativeVelocity*cs.motion.IntensityPerSpeed, cs.motion.MaxIntensity)
}

// DetectCollision 检查本帧是否发生碰杯
//
// 优先使用物理接触事件；没有接触事件时退回几何判定（两杯中心距离 <= 两个半宽之和）。
// 判定成功后立即进入 PhaseSeparating：酒杯放到接触点两侧，以 Speed*SeparationFactor 反向运动，
// 世界重力置 0 并启动恢复调度。
//
// 返回:
//   - ClinkCollision: 碰撞信息
//   - bool: 本帧是否发生碰撞
func (cs *ClinkSystem) DetectCollision() (ClinkCollision, bool) {
	contacts := cs.physics.DrainContacts()
	if cs.phase != PhaseApproaching {
		return ClinkCollision{}, false
	}

	var event CollisionEvent
	found := false
	for _, c := range contacts {
		if (c.A == cs.left && c.B == cs.right) || (c.A == cs.right && c.B == cs.left) {
			event = c
			found = true
			break
		}
	}

	if !found {
		lp, lv, _, okL := cs.physics.MugState(cs.left)
		rp, rv, _, okR := cs.physics.MugState(cs.right)
		if !okL || !okR || rp.X()-lp.X() > 2*cs.halfWidth {
			return ClinkCollision{}, false
		}
		event = CollisionEvent{
			A:                cs.left,
			B:                cs.right,
			ContactPoint:     lp.Add(rp).Mul(0.5),
			RelativeVelocity: math.Abs(lv.X() - rv.X()),
		}
	}

	event.Intensity = cs.Intensity(event.RelativeVelocity)
	cs.separate(event.ContactPoint.X())

	log.Printf("[ClinkSystem] clink! relative velocity %.2f, intensity %.2f", event.RelativeVelocity, event.Intensity)
	return ClinkCollision{Event: event, Intensity: event.Intensity}, true
}

// Update 推进运动 dt 秒
//
// 返回:
//   - bool: 分离阶段的复位延迟已到，调用方应执行整体复位
func (cs *ClinkSystem) Update(dt float64) bool {
	if cs.phase == PhaseReady {
		return false
	}

	if cs.phase == PhaseApproaching {
		cs.driveApproach()
	}

	if g, ok := cs.gravity.Step(dt); ok {
		cs.physics.SetGravity(g)
	}
	cs.physics.Step(dt)

	if cs.phase == PhaseSeparating && dt > 0 {
		cs.resetTimer -= dt
		if cs.resetTimer <= 0 {
			return true
		}
	}
	return false
}

// GravityStages 把配置中的恢复比例换算为绝对重力阶段
func (cs *ClinkSystem) GravityStages() []GravityStage {
	stages := make([]GravityStage, 0, len(cs.motion.GravityRestore))
	for _, s := range cs.motion.GravityRestore {
		stages = append(stages, GravityStage{Duration: s.Duration, Target: s.Fraction * cs.motion.Gravity})
	}
	return stages
}

func (cs *ClinkSystem) driveApproach() {
	cs.physics.SetMugVelocity(cs.left, cs.motion.Speed)
	cs.physics.SetMugVelocity(cs.right, -cs.motion.Speed)
}

func (cs *ClinkSystem) separate(contactX float64) {
	offset := cs.halfWidth + cs.motion.SeparationDistance
	cs.physics.PlaceMug(cs.left, contactX-offset, cs.tiltZ(cs.left))
	cs.physics.PlaceMug(cs.right, contactX+offset, cs.tiltZ(cs.right))

	v := cs.motion.Speed * cs.motion.SeparationFactor
	cs.physics.SetMugVelocity(cs.left, -v)
	cs.physics.SetMugVelocity(cs.right, v)

	cs.physics.SetGravity(0)
	cs.gravity.Start(0, cs.GravityStages())

	cs.phase = PhaseSeparating
	cs.resetTimer = cs.motion.ResetDelay
}

func (cs *ClinkSystem) placeAtStart() {
	half := cs.motion.StartDistance / 2
	cs.physics.PlaceMug(cs.left, -half, cs.tiltZ(cs.left))
	cs.physics.PlaceMug(cs.right, half, cs.tiltZ(cs.right))
}

func (cs *ClinkSystem) tiltZ(id ecs.EntityID) float64 {
	if mug, ok := ecs.GetComponent[*components.MugComponent](cs.em, id); ok {
		return mug.TiltZ
	}
	return 0
}
