package systems

import (
	"math"

	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/ecs"
	"github.com/decker502/beerclink/pkg/utils"
)

// LiquidResponseController 根据碰撞强度降低液面，并以 ease-out 缓动到目标值
//
// 液面只会因碰撞下降、只会因 Reset 回到 1.0，Step 永远不会让液面上升。
// 所有时间参数都使用模拟时钟（秒），不读取系统时间。
type LiquidResponseController struct {
	cfg config.LiquidConfig
}

// NewLiquidResponseController 创建液面控制器
func NewLiquidResponseController(cfg config.LiquidConfig) *LiquidResponseController {
	return &LiquidResponseController{cfg: cfg}
}

// SetConfig 替换液面参数，进行中的动画保持原有目标与时长
func (c *LiquidResponseController) SetConfig(cfg config.LiquidConfig) {
	c.cfg = cfg
}

// OnCollision 记录一次碰撞
//
// 目标液面 = max(MinLevel, 当前液面 - 强度 * ReductionFactor)，
// 从当前液面（而非上一次的目标）开始新的动画。
//
// 参数:
//   - state: 液面状态（原地修改）
//   - intensity: 碰撞强度（负数或 NaN 视为 0）
//   - now: 碰撞时刻（模拟时钟）
func (c *LiquidResponseController) OnCollision(state *components.LiquidComponent, intensity, now float64) {
	if state == nil {
		return
	}
	intensity = sanitizeIntensity(intensity)

	reduction := intensity * c.cfg.ReductionFactor
	target := math.Max(c.cfg.MinLevel, state.Level-reduction)
	// 液面已经低于下限时保持不动
	target = math.Min(target, state.Level)

	state.StartLevel = state.Level
	state.TargetLevel = target
	state.TransitionStart = now
	state.TransitionDuration = c.cfg.TransitionDuration
	state.Phase = components.LiquidTransitioning
}

// Step 推进液面动画
//
// 进度 p = (now - TransitionStart) / TransitionDuration，
// 液面 = lerp(StartLevel, TargetLevel, EaseOutQuad(p))；p >= 1 时液面精确等于目标并结束动画。
//
// 返回:
//   - bool: 动画是否仍在进行
func (c *LiquidResponseController) Step(state *components.LiquidComponent, now float64) bool {
	if state == nil || state.Phase != components.LiquidTransitioning {
		return false
	}

	elapsed := now - state.TransitionStart
	if state.TransitionDuration <= 0 || elapsed >= state.TransitionDuration {
		state.Level = state.TargetLevel
		state.Phase = components.LiquidSettled
		return false
	}

	p := utils.Clamp01(elapsed / state.TransitionDuration)
	state.Level = utils.Lerp(state.StartLevel, state.TargetLevel, utils.EaseOutQuad(p))
	return true
}

// Reset 把液面恢复为满杯
func (c *LiquidResponseController) Reset(state *components.LiquidComponent) {
	if state == nil {
		return
	}
	state.Level = 1.0
	state.TargetLevel = 1.0
	state.StartLevel = 1.0
	state.TransitionStart = 0
	state.TransitionDuration = 0
	state.Phase = components.LiquidSettled
}

// FoamBaseY 返回泡沫层相对杯底的高度（不含浮动）
func (c *LiquidResponseController) FoamBaseY(state *components.LiquidComponent) float64 {
	height := state.GlassHeight
	if height <= 0 {
		height = c.cfg.GlassHeight
	}
	return state.Level * height
}

// FoamY 返回泡沫层高度：Level * GlassHeight 加上正弦浮动
func (c *LiquidResponseController) FoamY(state *components.LiquidComponent, now float64) float64 {
	return c.FoamBaseY(state) + c.cfg.BobAmplitude*math.Sin(now*c.cfg.BobFrequency)
}

// LiquidSystem 每帧推进所有酒杯的液面动画
type LiquidSystem struct {
	em         *ecs.EntityManager
	controller *LiquidResponseController
}

// NewLiquidSystem 创建液面系统
func NewLiquidSystem(em *ecs.EntityManager, controller *LiquidResponseController) *LiquidSystem {
	return &LiquidSystem{em: em, controller: controller}
}

// Controller 返回底层控制器
func (ls *LiquidSystem) Controller() *LiquidResponseController {
	return ls.controller
}

// Update 推进所有液面到 now，返回仍在动画中的酒杯数
func (ls *LiquidSystem) Update(now float64) int {
	running := 0
	for _, id := range ecs.GetEntitiesWith1[*components.LiquidComponent](ls.em) {
		liquid, _ := ecs.GetComponent[*components.LiquidComponent](ls.em, id)
		if ls.controller.Step(liquid, now) {
			running++
		}
	}
	return running
}

// OnCollision 对实体的液面应用一次碰撞
func (ls *LiquidSystem) OnCollision(id ecs.EntityID, intensity, now float64) {
	if liquid, ok := ecs.GetComponent[*components.LiquidComponent](ls.em, id); ok {
		ls.controller.OnCollision(liquid, intensity, now)
	}
}

// ResetAll 把所有酒杯恢复为满杯
func (ls *LiquidSystem) ResetAll() {
	for _, id := range ecs.GetEntitiesWith1[*components.LiquidComponent](ls.em) {
		liquid, _ := ecs.GetComponent[*components.LiquidComponent](ls.em, id)
		ls.controller.Reset(liquid)
	}
}
