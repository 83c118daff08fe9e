package components

import "github.com/go-gl/mathgl/mgl64"

// PositionComponent 实体的世界坐标
// 酒杯的 Pos 为杯身中心；Angle 为绕 Z 轴的转角（弧度）
type PositionComponent struct {
	Pos      mgl64.Vec3
	Velocity mgl64.Vec3
	Angle    float64
}
