package systems

import (
	"github.com/decker502/beerclink/pkg/utils"
)

// GravityStage 重力恢复的一个阶段：在 Duration 秒内缓动到 Target
type GravityStage struct {
	Duration float64
	Target   float64
}

// GravitySchedule 按阶段把世界重力从碰撞时的值恢复到配置值
//
// 每个阶段从上一阶段的终值出发，使用 EaseInOutCubic 缓动。
// Duration 为 0 的阶段会立即跳到目标值。
// 调度只由 Step 推进，可随时 Cancel，复位时不会留下悬挂的定时回调。
type GravitySchedule struct {
	stages  []GravityStage
	index   int
	elapsed float64
	from    float64
	value   float64
	active  bool
}

// NewGravitySchedule 创建空闲的重力调度
func NewGravitySchedule() *GravitySchedule {
	return &GravitySchedule{}
}

// Start 从 from 开始执行 stages，覆盖正在进行的调度
func (gs *GravitySchedule) Start(from float64, stages []GravityStage) {
	gs.stages = append(gs.stages[:0], stages...)
	gs.index = 0
	gs.elapsed = 0
	gs.from = from
	gs.value = from
	gs.active = len(gs.stages) > 0
}

// Step 推进 dt 秒
//
// 返回:
//   - float64: 当前重力值
//   - bool: 本次调用是否产生了新值（调度开始时处于运行状态）
func (gs *GravitySchedule) Step(dt float64) (float64, bool) {
	if !gs.active {
		return gs.value, false
	}
	if dt < 0 {
		dt = 0
	}

	remaining := dt
	for gs.active {
		stage := gs.stages[gs.index]
		left := stage.Duration - gs.elapsed
		if remaining < left {
			gs.elapsed += remaining
			gs.value = utils.Lerp(gs.from, stage.Target, utils.EaseInOutCubic(gs.elapsed/stage.Duration))
			break
		}

		// 阶段结束
		remaining -= left
		gs.value = stage.Target
		gs.from = stage.Target
		gs.elapsed = 0
		gs.index++
		if gs.index >= len(gs.stages) {
			gs.active = false
		}
	}

	return gs.value, true
}

// Cancel 停止调度，当前值保持不变
func (gs *GravitySchedule) Cancel() {
	gs.active = false
	gs.stages = gs.stages[:0]
	gs.index = 0
	gs.elapsed = 0
}

// Active 返回调度是否仍在运行
func (gs *GravitySchedule) Active() bool {
	return gs.active
}

// Value 返回最近一次计算的重力值
func (gs *GravitySchedule) Value() float64 {
	return gs.value
}
