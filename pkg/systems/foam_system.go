package systems

import (
	"github.com/charmbracelet/harmonica"

	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/ecs"
)

// foamSpinRate 泡沫层自转速度（弧度/秒）
const foamSpinRate = 0.6

// FoamSystem 维护泡沫层的视觉状态
//
// 泡沫高度跟随液面，叠加小幅正弦浮动；
// 碰撞时给泡沫一个横向冲量，由阻尼弹簧拉回中心。
type FoamSystem struct {
	em         *ecs.EntityManager
	controller *LiquidResponseController
	cfg        config.LiquidConfig
}

// NewFoamSystem 创建泡沫系统
func NewFoamSystem(em *ecs.EntityManager, controller *LiquidResponseController, cfg config.LiquidConfig) *FoamSystem {
	return &FoamSystem{em: em, controller: controller, cfg: cfg}
}

// SetConfig 替换泡沫参数
func (fs *FoamSystem) SetConfig(cfg config.LiquidConfig) {
	fs.cfg = cfg
}

// Impulse 碰撞时推动泡沫晃动，direction 为酒杯运动方向（+1 / -1）
func (fs *FoamSystem) Impulse(foam *components.FoamComponent, intensity, direction float64) {
	if foam == nil {
		return
	}
	foam.SloshVelocity += direction * sanitizeIntensity(intensity) * fs.cfg.SloshGain
}

// Update 推进所有泡沫层
//
// 参数:
//   - dt: 帧间隔（秒）
//   - now: 模拟时钟，用于泡沫浮动
func (fs *FoamSystem) Update(dt, now float64) {
	var spring harmonica.Spring
	stepSpring := dt > 0 && fs.cfg.SloshFrequency > 0
	if stepSpring {
		spring = harmonica.NewSpring(dt, fs.cfg.SloshFrequency, fs.cfg.SloshDamping)
	}

	for _, id := range ecs.GetEntitiesWith1[*components.MugComponent](fs.em) {
		mug, _ := ecs.GetComponent[*components.MugComponent](fs.em, id)
		if mug.Foam == nil || mug.Liquid == nil {
			continue
		}

		mug.Foam.Y = fs.controller.FoamY(mug.Liquid, now)
		if stepSpring {
			mug.Foam.Slosh, mug.Foam.SloshVelocity = spring.Update(mug.Foam.Slosh, mug.Foam.SloshVelocity, 0)
		}
		if dt > 0 {
			mug.Foam.Rotation += foamSpinRate * dt
		}
	}
}

// Reset 让泡沫回到静止
func (fs *FoamSystem) Reset() {
	for _, id := range ecs.GetEntitiesWith1[*components.MugComponent](fs.em) {
		mug, _ := ecs.GetComponent[*components.MugComponent](fs.em, id)
		if mug.Foam == nil {
			continue
		}
		mug.Foam.Slosh = 0
		mug.Foam.SloshVelocity = 0
		mug.Foam.Rotation = 0
		if mug.Liquid != nil {
			mug.Foam.Y = fs.controller.FoamBaseY(mug.Liquid)
		}
	}
}
