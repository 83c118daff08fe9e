package simulation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/systems"
)

const tickDt = 1.0 / 60

// recordingSounder 记录每次碰杯的强度
type recordingSounder struct {
	intensities []float64
}

func (r *recordingSounder) PlayClink(intensity float64) {
	r.intensities = append(r.intensities, intensity)
}

func newTestSimulation(t *testing.T, opts ...Option) *Simulation {
	t.Helper()
	sim, err := New(config.DefaultSimulationConfig(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return sim
}

// runUntil 推进模拟直到 cond 成立，超过 maxTicks 时测试失败
func runUntil(t *testing.T, sim *Simulation, maxTicks int, cond func() bool) int {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		sim.Tick(tickDt)
		if cond() {
			return i + 1
		}
	}
	t.Fatalf("Condition not reached within %d ticks", maxTicks)
	return 0
}

// TestNew_InitialState 测试初始状态：ready、满杯、位于起点、没有粒子
func TestNew_InitialState(t *testing.T) {
	sim := newTestSimulation(t)
	snap := sim.Snapshot()

	if snap.Phase != systems.PhaseReady {
		t.Errorf("Phase = %v, 期望 ready", snap.Phase)
	}
	if snap.ActiveParticles() != 0 {
		t.Errorf("ActiveParticles = %d, 期望 0", snap.ActiveParticles())
	}
	if snap.Gravity != -15 {
		t.Errorf("Gravity = %v, 期望 -15", snap.Gravity)
	}

	left, right := snap.Mugs[components.MugLeft], snap.Mugs[components.MugRight]
	if math.Abs(left.Position.X()+20) > 1e-9 || math.Abs(right.Position.X()-20) > 1e-9 {
		t.Errorf("Mug x = (%v, %v), 期望 (-20, 20)", left.Position.X(), right.Position.X())
	}
	for _, mug := range snap.Mugs {
		if mug.Level != 1 || mug.LiquidPhase != components.LiquidSettled {
			t.Errorf("%v mug level %v phase %v, 期望满杯静止", mug.Side, mug.Level, mug.LiquidPhase)
		}
		if mug.FoamY != 30 {
			t.Errorf("%v mug FoamY = %v, 期望 30", mug.Side, mug.FoamY)
		}
	}
	if len(snap.Emitters) != 4 {
		t.Errorf("Emitters = %d, 期望每杯两个共 4 个", len(snap.Emitters))
	}
}

// TestNew_InvalidConfig 测试非法配置被拒绝
func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.SimulationConfig)
	}{
		{"间距过大", func(c *config.SimulationConfig) { c.Motion.StartDistance = 500 }},
		{"粒子寿命 NaN", func(c *config.SimulationConfig) { c.Emitters.Splash.Lifetime = "NaN" }},
		{"液面下限 NaN", func(c *config.SimulationConfig) { c.Liquid.MinLevel = math.NaN() }},
		{"分离距离为负", func(c *config.SimulationConfig) { c.Motion.SeparationDistance = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultSimulationConfig()
			tt.mutate(cfg)

			_, err := New(cfg)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("New error = %v, 期望包装 ErrInvalidConfig", err)
			}
		})
	}
}

// TestSimulation_FullClink 测试完整流程：靠近、碰杯、液面下降、飞溅、自动复位
func TestSimulation_FullClink(t *testing.T) {
	sound := &recordingSounder{}
	sim := newTestSimulation(t, WithSeed(3), WithSound(sound))

	if !sim.Start() {
		t.Fatal("Start should succeed from ready")
	}
	runUntil(t, sim, 300, func() bool { return sim.Clinks() == 1 })

	snap := sim.Snapshot()
	if snap.Phase != systems.PhaseSeparating {
		t.Errorf("Phase = %v, 期望 separating", snap.Phase)
	}
	if len(sound.intensities) != 1 {
		t.Fatalf("PlayClink called %d times, 期望 1", len(sound.intensities))
	}
	intensity := sound.intensities[0]
	if math.Abs(intensity-1.0) > 0.15 {
		t.Errorf("Clink intensity = %v, 期望约 1.0", intensity)
	}

	// 默认配置下飞溅请求 ~50 个，被容量 30 截断
	for _, stats := range snap.Emitters {
		if stats.Active > stats.Capacity {
			t.Errorf("%v %s active %d exceeds capacity %d", stats.Side, stats.Kind, stats.Active, stats.Capacity)
		}
		if stats.Triggers != 1 {
			t.Errorf("%v %s triggers = %d, 期望 1", stats.Side, stats.Kind, stats.Triggers)
		}
	}
	if snap.ActiveParticles() < 60 {
		t.Errorf("ActiveParticles = %d, 期望至少两杯的飞溅粒子 60 个", snap.ActiveParticles())
	}

	// 液面动画 1.2 秒后到达目标
	runUntil(t, sim, 120, func() bool {
		s := sim.Snapshot()
		return s.Mugs[0].LiquidPhase == components.LiquidSettled && s.Mugs[1].LiquidPhase == components.LiquidSettled
	})
	snap = sim.Snapshot()
	for _, mug := range snap.Mugs {
		want := math.Max(0.35, 1-intensity*0.25)
		if math.Abs(mug.Level-want) > 1e-9 {
			t.Errorf("%v mug level = %v, 期望 %v", mug.Side, mug.Level, want)
		}
	}

	// 3 秒后自动复位
	runUntil(t, sim, 240, func() bool { return sim.Phase() == systems.PhaseReady })
	snap = sim.Snapshot()
	for _, mug := range snap.Mugs {
		if mug.Level != 1 {
			t.Errorf("%v mug level after reset = %v, 期望 1", mug.Side, mug.Level)
		}
	}
	if snap.Gravity != -15 {
		t.Errorf("Gravity after reset = %v, 期望 -15", snap.Gravity)
	}
}

// TestSimulation_Trigger 测试手动触发
func TestSimulation_Trigger(t *testing.T) {
	sound := &recordingSounder{}
	sim := newTestSimulation(t, WithSound(sound))

	activated := sim.Trigger(1.0)
	// 每杯：飞溅 min(50, 30) + 泡沫 min(20, 50)
	if activated != 100 {
		t.Errorf("Trigger activated %d, 期望 100", activated)
	}
	if sim.Phase() != systems.PhaseReady {
		t.Errorf("Trigger should not change phase, got %v", sim.Phase())
	}

	snap := sim.Snapshot()
	for _, mug := range snap.Mugs {
		if mug.TargetLevel != 0.75 {
			t.Errorf("%v mug target = %v, 期望 0.75", mug.Side, mug.TargetLevel)
		}
	}

	if got := sim.Trigger(-2); got != 0 {
		t.Errorf("Trigger(-2) activated %d, 期望 0", got)
	}
	if len(sound.intensities) != 2 || sound.intensities[1] != 0 {
		t.Errorf("Sounder calls = %v, 期望第二次强度为 0", sound.intensities)
	}
}

// TestSimulation_TriggerReportsDropped 测试默认配置下飞溅池饱和会反映在统计中
func TestSimulation_TriggerReportsDropped(t *testing.T) {
	sim := newTestSimulation(t)
	sim.Trigger(1.0)

	for _, e := range sim.Snapshot().Emitters {
		want := 0
		if e.Kind == particle.KindSplash {
			// 需求 50，容量 30
			want = 20
		}
		if e.Dropped != want {
			t.Errorf("%s/%s Dropped = %d, 期望 %d", e.Side, e.Kind, e.Dropped, want)
		}
	}
}

// TestSimulation_TriggerVisibleSameTick 测试触发后的粒子在下一次积分中推进
func TestSimulation_TriggerVisibleSameTick(t *testing.T) {
	sim := newTestSimulation(t)
	sim.Trigger(1.0)
	before := sim.Snapshot()

	sim.Tick(tickDt)
	after := sim.Snapshot()

	if len(after.Particles) != len(before.Particles) {
		t.Fatalf("Particle count changed from %d to %d in one tick", len(before.Particles), len(after.Particles))
	}
	moved := 0
	for i := range after.Particles {
		if after.Particles[i].Position != before.Particles[i].Position {
			moved++
		}
		if after.Particles[i].Opacity >= 1 {
			t.Errorf("Particle %d opacity %v should start fading", i, after.Particles[i].Opacity)
		}
	}
	if moved == 0 {
		t.Error("No particle moved after one tick")
	}
}

// TestSimulation_Deterministic 测试相同种子与输入产生相同快照
func TestSimulation_Deterministic(t *testing.T) {
	run := func() Snapshot {
		sim := newTestSimulation(t, WithSeed(99))
		sim.Start()
		for i := 0; i < 150; i++ {
			sim.Tick(tickDt)
		}
		return sim.Snapshot()
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("Two runs with the same seed diverged")
	}
	if a.Clinks != 1 {
		t.Errorf("Clinks = %d, 期望 1", a.Clinks)
	}
}

// TestSimulation_UpdateConfig 测试参数更新与校验
func TestSimulation_UpdateConfig(t *testing.T) {
	sim := newTestSimulation(t)

	cfg := sim.Config()
	cfg.Motion.StartDistance = 60
	cfg.Motion.Gravity = -5
	cfg.Motion.LeftTilt.Z = 10
	cfg.Emitters.Splash.Capacity = 999
	if err := sim.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	snap := sim.Snapshot()
	if math.Abs(snap.Mugs[0].Position.X()+30) > 1e-9 {
		t.Errorf("Left mug x = %v, 期望 -30", snap.Mugs[0].Position.X())
	}
	if snap.Gravity != -5 {
		t.Errorf("Gravity = %v, 期望 -5", snap.Gravity)
	}
	if snap.Mugs[0].TiltZ != 10 {
		t.Errorf("Left tilt Z = %v, 期望 10", snap.Mugs[0].TiltZ)
	}
	if got := sim.Config().Emitters.Splash.Capacity; got != 30 {
		t.Errorf("Splash capacity = %d, 期望保持 30", got)
	}

	bad := sim.Config()
	bad.Motion.Speed = -1
	if err := sim.UpdateConfig(bad); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("UpdateConfig error = %v, 期望 ErrInvalidConfig", err)
	}
	if sim.Config().Motion.Speed != 10 {
		t.Error("Rejected config should leave the old one in place")
	}
}

// TestSimulation_TickIgnoresBadDt 测试非正 dt 不推进时钟
func TestSimulation_TickIgnoresBadDt(t *testing.T) {
	sim := newTestSimulation(t)
	sim.Tick(0)
	sim.Tick(-1)
	sim.Tick(math.NaN())
	if sim.Now() != 0 {
		t.Errorf("Now = %v, 期望 0", sim.Now())
	}
}
