package systems

import (
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/ecs"
)

// ParticleSystem 每帧推进所有发射器实体的粒子池
//
// 每个发射器使用自身参数中的重力与收缩系数。
// 处理顺序按实体 ID 固定。
type ParticleSystem struct {
	em *ecs.EntityManager
}

// NewParticleSystem 创建粒子系统
func NewParticleSystem(em *ecs.EntityManager) *ParticleSystem {
	return &ParticleSystem{em: em}
}

// Update 推进所有粒子 dt 秒，返回本帧回收的粒子总数
func (ps *ParticleSystem) Update(dt float64) int {
	expired := 0
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.em) {
		emitter, _ := ecs.GetComponent[*components.EmitterComponent](ps.em, id)
		if emitter.Pool == nil {
			continue
		}
		integrator := ParticleIntegrator{
			Gravity:      emitter.Params.Gravity,
			ShrinkFactor: emitter.Params.ShrinkFactor,
		}
		n := integrator.Step(emitter.Pool, dt)
		emitter.Expired += n
		expired += n
	}
	return expired
}

// ActiveCount 返回所有发射器中活跃粒子的总数
func (ps *ParticleSystem) ActiveCount() int {
	total := 0
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.em) {
		emitter, _ := ecs.GetComponent[*components.EmitterComponent](ps.em, id)
		if emitter.Pool != nil {
			total += emitter.Pool.ActiveCount()
		}
	}
	return total
}

// ReleaseAll 回收所有粒子
func (ps *ParticleSystem) ReleaseAll() {
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.em) {
		emitter, _ := ecs.GetComponent[*components.EmitterComponent](ps.em, id)
		if emitter.Pool != nil {
			emitter.Pool.ReleaseAll()
		}
	}
}
