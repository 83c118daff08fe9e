package systems

import (
	"log"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	particlePkg "github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/utils"
)

// SplashEmitter 把一次碰撞转换为一批从粒子池激活的粒子
//
// 发射器本身不持有粒子：粒子全部来自调用方传入的池，
// 池耗尽时只激活能拿到的部分，多余请求直接丢弃。
type SplashEmitter struct {
	params particlePkg.EmitterParams
	rng    *rand.Rand
}

// NewSplashEmitter 创建发射器
//
// 参数:
//   - params: 已解析的发射器参数
//   - rng: 随机数源，固定种子时粒子布局可复现
//
// 返回:
//   - *SplashEmitter: 发射器实例
func NewSplashEmitter(params particlePkg.EmitterParams, rng *rand.Rand) *SplashEmitter {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &SplashEmitter{params: params, rng: rng}
}

// Params 返回发射器参数
func (se *SplashEmitter) Params() particlePkg.EmitterParams {
	return se.params
}

// NewPool 按发射器参数分配粒子池，每个粒子的基础尺寸在 BaseScale 范围内随机
func (se *SplashEmitter) NewPool() *particlePkg.Pool {
	return particlePkg.NewPool(se.params.Capacity, func(int) particlePkg.Particle {
		return particlePkg.Particle{
			BaseScale: particlePkg.RandomInRange(se.rng, se.params.BaseScaleMin, se.params.BaseScaleMax),
		}
	})
}

// Demand 返回给定强度下未截断的粒子需求 floor(BaseCount * intensity)
// 负数或 NaN 强度视为 0
func (se *SplashEmitter) Demand(intensity float64) int {
	intensity = sanitizeIntensity(intensity)
	req := math.Floor(float64(se.params.BaseCount) * intensity)
	if req > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(req)
}

// Requested 返回实际尝试激活的粒子数：Demand 不超过池容量
func (se *SplashEmitter) Requested(pool *particlePkg.Pool, intensity float64) int {
	return min(se.Demand(intensity), pool.Capacity())
}

// Trigger 在 origin 附近激活一批粒子
//
// 每个粒子：
//   - 位置：origin 加上半径 Radius 的圆盘随机偏移
//   - 速度：圆锥内随机方向 * 随机速度 * 强度，再叠加 direction * DirectionalGain * 强度
//   - 寿命：在 Lifetime 范围内随机
//   - 年龄清零，尺寸恢复 BaseScale，不透明度为 1
//
// 参数:
//   - pool: 粒子来源
//   - origin: 发射中心（世界坐标）
//   - intensity: 碰撞强度（负数或 NaN 视为 0）
//   - direction: 可选的偏向方向，nil 表示纯圆锥发射
//
// 返回:
//   - int: 实际激活的粒子数
func (se *SplashEmitter) Trigger(pool *particlePkg.Pool, origin mgl64.Vec3, intensity float64, direction *mgl64.Vec3) int {
	if pool == nil {
		return 0
	}
	intensity = sanitizeIntensity(intensity)
	requested := se.Requested(pool, intensity)

	activated := 0
	for i := 0; i < requested; i++ {
		pt := pool.Acquire()
		if pt == nil {
			// 池已饱和，剩余请求丢弃
			break
		}

		pt.Position = origin.Add(utils.RandomOffsetOnDisk(se.rng, se.params.Radius))

		speed := particlePkg.RandomInRange(se.rng, se.params.ConeSpeedMin, se.params.ConeSpeedMax) * intensity
		vel := utils.RandomConeDirection(se.rng, se.params.ConeAngle).Mul(speed)
		if direction != nil {
			vel = vel.Add(direction.Mul(se.params.DirectionalGain * intensity))
		}
		pt.Velocity = vel

		pt.Age = 0
		pt.MaxLifetime = particlePkg.RandomInRange(se.rng, se.params.LifetimeMin, se.params.LifetimeMax)
		pt.Scale = pt.BaseScale
		pt.Opacity = 1.0

		pool.Activate(pt)
		activated++
	}

	return activated
}

// Emit 触发挂在实体上的发射器并更新其统计
func (se *SplashEmitter) Emit(emitter *components.EmitterComponent, origin mgl64.Vec3, intensity float64, direction *mgl64.Vec3) int {
	if emitter == nil || emitter.Pool == nil {
		return 0
	}
	// 超出容量与池中已无空闲的部分都计入 Dropped
	demand := se.Demand(intensity)
	activated := se.Trigger(emitter.Pool, origin, intensity, direction)

	emitter.Triggers++
	emitter.Activated += activated
	if dropped := demand - activated; dropped > 0 {
		emitter.Dropped += dropped
		log.Printf("[SplashEmitter] %s pool saturated: requested %d, activated %d", emitter.Kind, demand, activated)
	}
	return activated
}

func sanitizeIntensity(intensity float64) float64 {
	if math.IsNaN(intensity) || intensity < 0 {
		return 0
	}
	return intensity
}
