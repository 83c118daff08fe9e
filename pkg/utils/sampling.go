package utils

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// RandomOffsetOnDisk 在 XZ 平面半径为 radius 的圆盘内均匀采样一个偏移量
// 半径使用 sqrt 随机，保证面积均匀分布
func RandomOffsetOnDisk(rng *rand.Rand, radius float64) mgl64.Vec3 {
	if radius <= 0 {
		return mgl64.Vec3{}
	}
	r := math.Sqrt(rng.Float64()) * radius
	ang := rng.Float64() * 2 * math.Pi
	return mgl64.Vec3{r * math.Cos(ang), 0, r * math.Sin(ang)}
}

// RandomConeDirection 在以 +Y 为轴、半角为 halfAngleDeg 的圆锥内均匀采样单位向量
func RandomConeDirection(rng *rand.Rand, halfAngleDeg float64) mgl64.Vec3 {
	if halfAngleDeg <= 0 {
		return mgl64.Vec3{0, 1, 0}
	}
	thetaMax := mgl64.DegToRad(math.Min(halfAngleDeg, 180))
	cosTheta := Lerp(math.Cos(thetaMax), 1, rng.Float64())
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * rng.Float64()
	return mgl64.Vec3{math.Cos(phi) * sinTheta, cosTheta, math.Sin(phi) * sinTheta}
}

// SafeNormalize 归一化向量，零向量返回零向量
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
