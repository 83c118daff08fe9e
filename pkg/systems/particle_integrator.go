package systems

import (
	"math"

	particlePkg "github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/utils"
)

// ParticleIntegrator 推进粒子池中所有活跃粒子
type ParticleIntegrator struct {
	Gravity      float64 // 向下加速度（正值）
	ShrinkFactor float64 // 生命周期结束时损失的尺寸比例 [0, 1]
}

// NewParticleIntegrator 创建积分器
func NewParticleIntegrator(gravity, shrinkFactor float64) *ParticleIntegrator {
	return &ParticleIntegrator{
		Gravity:      gravity,
		ShrinkFactor: utils.Clamp01(shrinkFactor),
	}
}

// Step 推进 dt 秒
//
// 对每个活跃粒子：
//  1. velocity.y -= Gravity * dt
//  2. position += velocity * dt
//  3. age += dt
//  4. age >= maxLifetime 时立即释放回池（本帧即不再活跃）
//  5. 否则 opacity = 1 - age/maxLifetime，scale = BaseScale * (1 - fade*ShrinkFactor)
//
// dt <= 0 或 NaN 时不做任何事。
//
// 返回:
//   - int: 本次回收的粒子数
func (pi *ParticleIntegrator) Step(pool *particlePkg.Pool, dt float64) int {
	if pool == nil || !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}

	expired := 0
	pool.Each(func(pt *particlePkg.Particle) {
		pt.Velocity[1] -= pi.Gravity * dt
		pt.Position = pt.Position.Add(pt.Velocity.Mul(dt))
		pt.Age += dt

		if pt.Age >= pt.MaxLifetime {
			pool.Release(pt)
			expired++
			return
		}

		fade := utils.Clamp01(pt.Age / pt.MaxLifetime)
		pt.Opacity = utils.Clamp01(1 - fade)
		pt.Scale = pt.BaseScale * (1 - fade*pi.ShrinkFactor)
	})

	return expired
}
