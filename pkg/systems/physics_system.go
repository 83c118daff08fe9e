package systems

import (
	"log"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/ecs"
)

// tableHalfWidth 桌面刚体的半宽，足够容纳最大间距下的两个酒杯
const tableHalfWidth = 500.0

// CollisionEvent 两个酒杯之间的一次接触
type CollisionEvent struct {
	A, B ecs.EntityID

	// Intensity 由 ClinkSystem 根据相对速度计算
	Intensity float64
	// ContactPoint 两杯中心的中点（世界坐标）
	ContactPoint mgl64.Vec3
	// RelativeVelocity 接触瞬间两杯的相对速度大小
	RelativeVelocity float64
}

// PhysicsSystem 在侧视平面（X 水平、Y 向上）上模拟桌面与两个酒杯
//
// 桌面是静态刚体；酒杯是固定转角的动态盒子，恢复系数 1、摩擦接近 0，
// 左右倾斜（TiltZ）作为刚体转角。酒杯之间的接触由接触监听器记录，
// 由 ClinkSystem 在下一帧开头取走。
type PhysicsSystem struct {
	em  *ecs.EntityManager
	cfg config.PhysicsConfig

	world  *box2d.B2World
	table  *box2d.B2Body
	bodies map[ecs.EntityID]*box2d.B2Body

	contacts []CollisionEvent
}

// NewPhysicsSystem 创建物理世界
//
// 参数:
//   - em: 实体管理器，酒杯位置同步到 PositionComponent
//   - cfg: 刚体参数
//   - gravity: 初始重力（Y 轴，负值向下）
//
// 返回:
//   - *PhysicsSystem: 物理系统实例
func NewPhysicsSystem(em *ecs.EntityManager, cfg config.PhysicsConfig, gravity float64) *PhysicsSystem {
	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, gravity))
	ps := &PhysicsSystem{
		em:     em,
		cfg:    cfg,
		world:  &world,
		bodies: make(map[ecs.EntityID]*box2d.B2Body),
	}
	ps.world.SetContactListener(&mugContactListener{ps: ps})

	// 桌面：上表面位于 TableY
	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_staticBody
	bd.Position.Set(0, cfg.TableY-1)
	ps.table = ps.world.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(tableHalfWidth, 1)
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Friction = cfg.Friction
	fd.Restitution = cfg.Restitution
	ps.table.CreateFixtureFromDef(&fd)

	return ps
}

// AddMug 为酒杯实体创建动态刚体
//
// 参数:
//   - id: 酒杯实体
//   - x: 杯身中心的 X 坐标（Y 由桌面高度决定）
//   - tiltZ: 左右倾斜（度），作为刚体转角
func (ps *PhysicsSystem) AddMug(id ecs.EntityID, x, tiltZ float64) {
	if old, ok := ps.bodies[id]; ok {
		ps.world.DestroyBody(old)
	}

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(x, ps.restY())
	bd.Angle = mgl64.DegToRad(tiltZ)
	bd.FixedRotation = true
	bd.AllowSleep = false
	bd.Bullet = true
	body := ps.world.CreateBody(&bd)
	body.SetUserData(id)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(ps.cfg.MugHalfWidth, ps.cfg.MugHalfHeight)
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = ps.cfg.Density
	fd.Friction = ps.cfg.Friction
	fd.Restitution = ps.cfg.Restitution
	body.CreateFixtureFromDef(&fd)

	ps.bodies[id] = body
	ps.syncPosition(id, body)
}

// PlaceMug 把酒杯放到 x 处（静止在桌面上），清除速度
func (ps *PhysicsSystem) PlaceMug(id ecs.EntityID, x, tiltZ float64) {
	body, ok := ps.bodies[id]
	if !ok {
		return
	}
	body.SetTransform(box2d.MakeB2Vec2(x, ps.restY()), mgl64.DegToRad(tiltZ))
	body.SetLinearVelocity(box2d.MakeB2Vec2(0, 0))
	body.SetAngularVelocity(0)
	body.SetAwake(true)
	ps.syncPosition(id, body)
}

// SetMugVelocity 设置酒杯水平速度，保留竖直分量（重力作用）
func (ps *PhysicsSystem) SetMugVelocity(id ecs.EntityID, vx float64) {
	body, ok := ps.bodies[id]
	if !ok {
		return
	}
	v := body.GetLinearVelocity()
	body.SetLinearVelocity(box2d.MakeB2Vec2(vx, v.Y))
	body.SetAwake(true)
}

// MugState 返回酒杯刚体的位置、速度与转角
func (ps *PhysicsSystem) MugState(id ecs.EntityID) (pos, vel mgl64.Vec3, angle float64, ok bool) {
	body, found := ps.bodies[id]
	if !found {
		return mgl64.Vec3{}, mgl64.Vec3{}, 0, false
	}
	p := body.GetPosition()
	v := body.GetLinearVelocity()
	return mgl64.Vec3{p.X, p.Y, 0}, mgl64.Vec3{v.X, v.Y, 0}, body.GetAngle(), true
}

// SetGravity 设置世界重力（Y 轴）
func (ps *PhysicsSystem) SetGravity(g float64) {
	ps.world.SetGravity(box2d.MakeB2Vec2(0, g))
}

// Gravity 返回世界重力（Y 轴）
func (ps *PhysicsSystem) Gravity() float64 {
	return ps.world.GetGravity().Y
}

// Step 推进物理世界 dt 秒并同步酒杯位置
func (ps *PhysicsSystem) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	ps.world.Step(dt, ps.cfg.VelocityIterations, ps.cfg.PositionIterations)

	for id, body := range ps.bodies {
		ps.syncPosition(id, body)
	}
}

// DrainContacts 取走并清空已记录的酒杯接触
func (ps *PhysicsSystem) DrainContacts() []CollisionEvent {
	if len(ps.contacts) == 0 {
		return nil
	}
	out := ps.contacts
	ps.contacts = nil
	return out
}

// restY 酒杯静止在桌面上时的中心高度
func (ps *PhysicsSystem) restY() float64 {
	return ps.cfg.TableY + ps.cfg.MugHalfHeight
}

func (ps *PhysicsSystem) syncPosition(id ecs.EntityID, body *box2d.B2Body) {
	pos, ok := ecs.GetComponent[*components.PositionComponent](ps.em, id)
	if !ok {
		return
	}
	p := body.GetPosition()
	v := body.GetLinearVelocity()
	pos.Pos = mgl64.Vec3{p.X, p.Y, 0}
	pos.Velocity = mgl64.Vec3{v.X, v.Y, 0}
	pos.Angle = body.GetAngle()
}

// mugContactListener 记录酒杯之间的接触，忽略酒杯与桌面的接触
type mugContactListener struct {
	ps *PhysicsSystem
}

func (l *mugContactListener) BeginContact(contact box2d.B2ContactInterface) {
	a := contact.GetFixtureA().GetBody()
	b := contact.GetFixtureB().GetBody()

	idA, okA := a.GetUserData().(ecs.EntityID)
	idB, okB := b.GetUserData().(ecs.EntityID)
	if !okA || !okB {
		return
	}

	va := a.GetLinearVelocity()
	vb := b.GetLinearVelocity()
	pa := a.GetPosition()
	pb := b.GetPosition()

	event := CollisionEvent{
		A:                idA,
		B:                idB,
		ContactPoint:     mgl64.Vec3{(pa.X + pb.X) / 2, (pa.Y + pb.Y) / 2, 0},
		RelativeVelocity: math.Hypot(va.X-vb.X, va.Y-vb.Y),
	}
	l.ps.contacts = append(l.ps.contacts, event)
	log.Printf("[PhysicsSystem] contact %d-%d, relative velocity %.2f", idA, idB, event.RelativeVelocity)
}

func (l *mugContactListener) EndContact(contact box2d.B2ContactInterface) {}

func (l *mugContactListener) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
}

func (l *mugContactListener) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
}
