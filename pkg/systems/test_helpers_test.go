package systems

import (
	"math/rand"
	"testing"

	particlePkg "github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/ecs"
)

// testRig 测试用的完整碰杯场景（不含渲染与音频）
type testRig struct {
	cfg     *config.SimulationConfig
	em      *ecs.EntityManager
	physics *PhysicsSystem
	gravity *GravitySchedule
	clink   *ClinkSystem
	liquid  *LiquidSystem
	foam    *FoamSystem

	left, right ecs.EntityID
}

// newTestRig 按默认配置创建场景，酒杯位于起始位置
func newTestRig(t *testing.T) *testRig {
	t.Helper()
	cfg := config.DefaultSimulationConfig()

	r := &testRig{cfg: cfg, em: ecs.NewEntityManager()}
	r.physics = NewPhysicsSystem(r.em, cfg.Physics, cfg.Motion.Gravity)
	r.gravity = NewGravitySchedule()
	r.clink = NewClinkSystem(r.em, r.physics, r.gravity, cfg.Motion, cfg.Physics.MugHalfWidth)

	controller := NewLiquidResponseController(cfg.Liquid)
	r.liquid = NewLiquidSystem(r.em, controller)
	r.foam = NewFoamSystem(r.em, controller, cfg.Liquid)

	r.left = r.addMug(components.MugLeft, -cfg.Motion.StartDistance/2)
	r.right = r.addMug(components.MugRight, cfg.Motion.StartDistance/2)
	r.clink.SetMugs(r.left, r.right)
	r.clink.Reset()
	return r
}

func (r *testRig) addMug(side components.MugSide, x float64) ecs.EntityID {
	id := r.em.CreateEntity()
	mug := &components.MugComponent{
		Side:   side,
		Foam:   &components.FoamComponent{},
		Liquid: components.NewLiquidComponent(r.cfg.Liquid.GlassHeight),
	}
	r.em.AddComponent(id, mug)
	r.em.AddComponent(id, mug.Liquid)
	r.em.AddComponent(id, &components.PositionComponent{})
	r.physics.AddMug(id, x, 0)
	return id
}

// testParams 返回一个容易推算结果的发射器参数
func testParams(capacity, baseCount int) particlePkg.EmitterParams {
	return particlePkg.EmitterParams{
		Kind:            particlePkg.KindSplash,
		Capacity:        capacity,
		BaseCount:       baseCount,
		Radius:          2,
		LifetimeMin:     0.5,
		LifetimeMax:     1.0,
		ConeSpeedMin:    3,
		ConeSpeedMax:    6,
		ConeAngle:       30,
		DirectionalGain: 4,
		BaseScaleMin:    1,
		BaseScaleMax:    1,
		ShrinkFactor:    0.5,
		Gravity:         9.8,
	}
}

// activateParticle 从池中激活一个粒子并设置其运动状态
func activateParticle(t *testing.T, pool *particlePkg.Pool, maxLifetime float64) *particlePkg.Particle {
	t.Helper()
	pt := pool.Acquire()
	if pt == nil {
		t.Fatal("pool unexpectedly saturated")
	}
	pt.MaxLifetime = maxLifetime
	pool.Activate(pt)
	return pt
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}
