package components

import (
	"github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/ecs"
)

// EmitterComponent 表示挂在酒杯上的一个粒子发射器（飞溅或泡沫）
//
// 粒子池在场景创建时一次性分配，随进程存活；发射器从池中取粒子，
// ParticleSystem 每帧推进池内活跃粒子并回收过期粒子。
//
// 纯数据组件，不包含方法。
type EmitterComponent struct {
	Kind   particle.Kind
	Owner  ecs.EntityID // 所属酒杯实体
	Pool   *particle.Pool
	Params particle.EmitterParams

	// 统计（用于调试与测试）
	Triggers  int // 触发次数
	Activated int // 累计激活粒子数
	Dropped   int // 因粒子池耗尽而丢弃的请求数
	Expired   int // 累计回收粒子数
}
