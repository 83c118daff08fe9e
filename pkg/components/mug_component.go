package components

// MugSide 酒杯在场景中的位置
type MugSide int

const (
	// MugLeft 左侧酒杯（绕 Y 轴旋转 180°）
	MugLeft MugSide = iota
	// MugRight 右侧酒杯
	MugRight
)

// String 返回调试名称
func (s MugSide) String() string {
	if s == MugLeft {
		return "left"
	}
	return "right"
}

// Direction 返回朝向对面酒杯的 X 方向（左杯 +1，右杯 -1）
func (s MugSide) Direction() float64 {
	if s == MugLeft {
		return 1
	}
	return -1
}

// MugComponent 酒杯实体
//
// 泡沫与发射器通过类型化引用直接持有，不依赖名称或下标查找。
type MugComponent struct {
	Side MugSide

	// 倾斜角（度）
	TiltX float64
	TiltZ float64

	Foam        *FoamComponent
	Liquid      *LiquidComponent
	Splash      *EmitterComponent
	FoamEmitter *EmitterComponent
}
