package scenes

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/game"
	"github.com/decker502/beerclink/pkg/simulation"
	"github.com/decker502/beerclink/pkg/systems"
)

func newTestScene(t *testing.T) *ClinkScene {
	t.Helper()
	sim, err := simulation.New(config.DefaultSimulationConfig())
	if err != nil {
		t.Fatalf("simulation.New failed: %v", err)
	}
	return NewClinkScene(sim, game.NewAudioManager(nil, 1))
}

// TestClinkScene_Actions 测试运动控制操作
func TestClinkScene_Actions(t *testing.T) {
	s := newTestScene(t)

	s.apply(actionStart)
	if s.sim.Phase() != systems.PhaseApproaching {
		t.Errorf("Phase after start = %v, 期望 approaching", s.sim.Phase())
	}

	s.apply(actionReset)
	if s.sim.Phase() != systems.PhaseReady {
		t.Errorf("Phase after reset = %v, 期望 ready", s.sim.Phase())
	}

	s.apply(actionTrigger)
	if s.sim.Clinks() != 1 {
		t.Errorf("Clinks after trigger = %d, 期望 1", s.sim.Clinks())
	}

	s.apply(actionPause)
	if !s.Paused() {
		t.Error("Scene should be paused")
	}
	s.apply(actionPause)
	if s.Paused() {
		t.Error("Second pause should resume")
	}
}

// TestClinkScene_AdjustConfig 测试参数调整与边界
func TestClinkScene_AdjustConfig(t *testing.T) {
	tests := []struct {
		name    string
		action  sceneAction
		repeats int
		check   func(cfg *config.SimulationConfig) (float64, float64)
	}{
		{"加速", actionSpeedUp, 1, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.Speed, 15 }},
		{"速度上限", actionSpeedUp, 40, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.Speed, 100 }},
		{"速度下限", actionSpeedDown, 10, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.Speed, 5 }},
		{"间距增加", actionDistanceUp, 2, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.StartDistance, 50 }},
		{"间距下限", actionDistanceDown, 10, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.StartDistance, 25 }},
		{"重力上限", actionGravityUp, 40, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.Gravity, 0 }},
		{"重力下限", actionGravityDown, 40, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.Gravity, -30 }},
		{"左杯倾斜", actionLeftTiltUp, 2, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.LeftTilt.Z, 10 }},
		{"右杯倾斜下限", actionRightTiltDown, 20, func(c *config.SimulationConfig) (float64, float64) { return c.Motion.RightTilt.Z, -30 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t)
			for i := 0; i < tt.repeats; i++ {
				s.apply(tt.action)
			}
			got, want := tt.check(s.sim.Config())
			if got != want {
				t.Errorf("got %v, 期望 %v", got, want)
			}
		})
	}
}

// TestClinkScene_ToggleSound 测试没有音频上下文时声音保持关闭
func TestClinkScene_ToggleSound(t *testing.T) {
	s := newTestScene(t)
	s.apply(actionToggleSound)
	if s.audio.Enabled() {
		t.Error("Sound cannot be enabled without an audio context")
	}

	help := s.showHelp
	s.apply(actionToggleHelp)
	if s.showHelp == help {
		t.Error("Help overlay should toggle")
	}
}

// TestWorldToScreen 测试坐标转换
func TestWorldToScreen(t *testing.T) {
	x, y := WorldToScreen(mgl64.Vec3{0, 0, 0})
	if x != float64(config.GameWindowWidth)/2 || y != config.TableScreenY {
		t.Errorf("Origin maps to (%v, %v), 期望桌面中心", x, y)
	}

	x2, y2 := WorldToScreen(mgl64.Vec3{10, 5, 0})
	if math.Abs(x2-x-10*config.WorldToScreenScale) > 1e-9 {
		t.Errorf("X scale wrong: %v", x2-x)
	}
	if y2 >= y {
		t.Errorf("World +Y should move up on screen: %v -> %v", y, y2)
	}
}

// TestPremultiply 测试预乘 alpha
func TestPremultiply(t *testing.T) {
	got := premultiply(color.RGBA{R: 200, G: 100, B: 0, A: 127})
	if got.R > got.A || got.G > got.A {
		t.Errorf("Premultiplied channels exceed alpha: %+v", got)
	}
	if opaque := premultiply(color.RGBA{R: 10, G: 20, B: 30, A: 255}); opaque != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("Opaque color changed: %+v", opaque)
	}
}

// TestTapAction 测试点击屏幕在各阶段对应的操作
func TestTapAction(t *testing.T) {
	tests := []struct {
		name  string
		phase systems.ClinkPhase
		want  sceneAction
	}{
		{"就绪时开始", systems.PhaseReady, actionStart},
		{"靠近时复位", systems.PhaseApproaching, actionReset},
		{"分离时复位", systems.PhaseSeparating, actionReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tapAction(tt.phase); got != tt.want {
				t.Errorf("tapAction(%v) = %v, 期望 %v", tt.phase, got, tt.want)
			}
		})
	}
}
