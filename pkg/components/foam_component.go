package components

// FoamComponent 酒杯顶部的泡沫层（纯视觉）
type FoamComponent struct {
	Y        float64 // 相对杯底的高度 = Level * GlassHeight + 浮动
	Rotation float64 // 绕 Y 轴自转（弧度）

	// 晃动弹簧状态
	Slosh         float64 // 横向偏移
	SloshVelocity float64
}
