package components

// LiquidPhase 液面动画状态
type LiquidPhase int

const (
	// LiquidSettled 液面静止
	LiquidSettled LiquidPhase = iota
	// LiquidTransitioning 液面正在缓动到 TargetLevel
	LiquidTransitioning
)

// String 返回调试名称
func (p LiquidPhase) String() string {
	if p == LiquidTransitioning {
		return "transitioning"
	}
	return "settled"
}

// LiquidComponent 单个酒杯的液面状态
//
// Level 只会因碰撞而下降，只会因复位而回到 1.0，不会自行恢复。
type LiquidComponent struct {
	Level       float64 // 当前液面比例 [MinLevel, 1.0]
	TargetLevel float64 // 当前动画的目标液面
	StartLevel  float64 // 动画开始时的液面

	TransitionStart    float64 // 动画开始时间（模拟时钟，秒）
	TransitionDuration float64 // 动画时长（秒）

	GlassHeight float64 // 杯身高度，用于换算泡沫高度

	Phase LiquidPhase
}

// NewLiquidComponent 创建满杯液面
func NewLiquidComponent(glassHeight float64) *LiquidComponent {
	return &LiquidComponent{
		Level:       1.0,
		TargetLevel: 1.0,
		StartLevel:  1.0,
		GlassHeight: glassHeight,
		Phase:       LiquidSettled,
	}
}
