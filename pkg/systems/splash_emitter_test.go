package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	particlePkg "github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
)

// TestSplashEmitter_RequestedCount 测试请求数量 = floor(BaseCount * 强度)，不超过容量
func TestSplashEmitter_RequestedCount(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		baseCount int
		intensity float64
		want      int
	}{
		{"容量截断", 30, 50, 2.0, 30},
		{"正常强度", 100, 50, 1.0, 50},
		{"向下取整", 100, 50, 0.51, 25},
		{"零强度", 30, 50, 0, 0},
		{"负强度", 30, 50, -1, 0},
		{"NaN 强度", 30, 50, math.NaN(), 0},
		{"无穷强度", 30, 50, math.Inf(1), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := NewSplashEmitter(testParams(tt.capacity, tt.baseCount), newTestRand())
			pool := se.NewPool()

			got := se.Trigger(pool, mgl64.Vec3{}, tt.intensity, nil)
			if got != tt.want {
				t.Errorf("Trigger activated %d, 期望 %d", got, tt.want)
			}
			if pool.ActiveCount() != tt.want {
				t.Errorf("ActiveCount = %d, 期望 %d", pool.ActiveCount(), tt.want)
			}
		})
	}
}

// TestSplashEmitter_SaturatedPool 测试池饱和后再次触发不会激活任何粒子
func TestSplashEmitter_SaturatedPool(t *testing.T) {
	se := NewSplashEmitter(testParams(30, 50), newTestRand())
	pool := se.NewPool()

	if got := se.Trigger(pool, mgl64.Vec3{}, 2.0, nil); got != 30 {
		t.Fatalf("First trigger activated %d, 期望 30", got)
	}
	if got := se.Trigger(pool, mgl64.Vec3{}, 2.0, nil); got != 0 {
		t.Errorf("Trigger on saturated pool activated %d, 期望 0", got)
	}
	if pool.ActiveCount() > pool.Capacity() {
		t.Errorf("ActiveCount %d exceeds capacity %d", pool.ActiveCount(), pool.Capacity())
	}
}

// TestSplashEmitter_ParticleInitialState 测试激活粒子的初始状态
func TestSplashEmitter_ParticleInitialState(t *testing.T) {
	params := testParams(40, 40)
	se := NewSplashEmitter(params, newTestRand())
	pool := se.NewPool()
	origin := mgl64.Vec3{5, 10, -3}

	se.Trigger(pool, origin, 1.0, nil)

	count := 0
	pool.Each(func(pt *particlePkg.Particle) {
		count++
		offset := pt.Position.Sub(origin)
		if offset.Y() != 0 {
			t.Errorf("Spawn offset should stay in the XZ plane, got y=%v", offset.Y())
		}
		if d := math.Hypot(offset.X(), offset.Z()); d > params.Radius+1e-9 {
			t.Errorf("Spawn distance %v exceeds radius %v", d, params.Radius)
		}
		if pt.MaxLifetime < params.LifetimeMin || pt.MaxLifetime > params.LifetimeMax {
			t.Errorf("MaxLifetime %v out of [%v, %v]", pt.MaxLifetime, params.LifetimeMin, params.LifetimeMax)
		}
		if pt.Age != 0 || pt.Opacity != 1 || pt.Scale != pt.BaseScale {
			t.Errorf("Unexpected visual reset: age=%v opacity=%v scale=%v base=%v", pt.Age, pt.Opacity, pt.Scale, pt.BaseScale)
		}
		if speed := pt.Velocity.Len(); speed < params.ConeSpeedMin-1e-9 || speed > params.ConeSpeedMax+1e-9 {
			t.Errorf("Launch speed %v out of cone range", speed)
		}
		if pt.Velocity.Y() <= 0 {
			t.Errorf("Cone launch should point upward, got %v", pt.Velocity)
		}
	})
	if count != 40 {
		t.Errorf("Visited %d particles, 期望 40", count)
	}
}

// TestSplashEmitter_DirectionBias 测试方向偏置按 DirectionalGain * 强度叠加
func TestSplashEmitter_DirectionBias(t *testing.T) {
	params := testParams(5, 5)
	params.ConeSpeedMin = 0
	params.ConeSpeedMax = 0
	se := NewSplashEmitter(params, newTestRand())
	pool := se.NewPool()

	dir := mgl64.Vec3{1, 0, 0}
	se.Trigger(pool, mgl64.Vec3{}, 0.5, &dir)

	want := mgl64.Vec3{params.DirectionalGain * 0.5, 0, 0}
	pool.Each(func(pt *particlePkg.Particle) {
		if !pt.Velocity.ApproxEqual(want) {
			t.Errorf("Velocity = %v, 期望 %v", pt.Velocity, want)
		}
	})
}

// TestSplashEmitter_Deterministic 测试相同种子产生相同的粒子布局
func TestSplashEmitter_Deterministic(t *testing.T) {
	run := func() []mgl64.Vec3 {
		se := NewSplashEmitter(testParams(20, 20), rand.New(rand.NewSource(7)))
		pool := se.NewPool()
		se.Trigger(pool, mgl64.Vec3{}, 1.0, nil)
		var out []mgl64.Vec3
		pool.Each(func(pt *particlePkg.Particle) {
			out = append(out, pt.Position, pt.Velocity)
		})
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("Different particle counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Run differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

// TestSplashEmitter_EmitStats 测试 Emit 更新发射器统计
func TestSplashEmitter_EmitStats(t *testing.T) {
	se := NewSplashEmitter(testParams(30, 50), newTestRand())
	emitter := &components.EmitterComponent{Kind: particlePkg.KindSplash, Pool: se.NewPool(), Params: se.Params()}

	se.Emit(emitter, mgl64.Vec3{}, 1.0, nil)

	if emitter.Triggers != 1 {
		t.Errorf("Triggers = %d, 期望 1", emitter.Triggers)
	}
	if emitter.Activated != 30 {
		t.Errorf("Activated = %d, 期望 30", emitter.Activated)
	}
	if emitter.Dropped != 20 {
		t.Errorf("Dropped = %d, 期望 20", emitter.Dropped)
	}

	if got := se.Emit(nil, mgl64.Vec3{}, 1.0, nil); got != 0 {
		t.Errorf("Emit(nil) = %d, 期望 0", got)
	}
}

// TestSplashEmitter_EmitDroppedOnSaturatedPool 测试超出容量与池满时的丢弃计数
func TestSplashEmitter_EmitDroppedOnSaturatedPool(t *testing.T) {
	tests := []struct {
		name        string
		intensity   float64
		wantDemand  int
		wantDropped int
	}{
		{"默认强度", 1.0, 50, 70},
		{"双倍强度", 2.0, 100, 170},
		{"低强度首批不丢弃", 0.4, 20, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := NewSplashEmitter(testParams(30, 50), newTestRand())
			emitter := &components.EmitterComponent{Kind: particlePkg.KindSplash, Pool: se.NewPool(), Params: se.Params()}

			if got := se.Demand(tt.intensity); got != tt.wantDemand {
				t.Errorf("Demand(%v) = %d, 期望 %d", tt.intensity, got, tt.wantDemand)
			}

			// 第二次触发时池里只剩 30 - 首批激活数
			se.Emit(emitter, mgl64.Vec3{}, tt.intensity, nil)
			se.Emit(emitter, mgl64.Vec3{}, tt.intensity, nil)

			if emitter.Activated != 30 {
				t.Errorf("Activated = %d, 期望 30", emitter.Activated)
			}
			if emitter.Dropped != tt.wantDropped {
				t.Errorf("Dropped = %d, 期望 %d", emitter.Dropped, tt.wantDropped)
			}
			if emitter.Activated+emitter.Dropped != 2*tt.wantDemand {
				t.Errorf("Activated + Dropped = %d, 期望 %d", emitter.Activated+emitter.Dropped, 2*tt.wantDemand)
			}
		})
	}
}
