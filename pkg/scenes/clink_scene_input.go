package scenes

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/input"
	"github.com/decker502/beerclink/pkg/systems"
	"github.com/decker502/beerclink/pkg/utils"
)

// sceneAction 键盘操作
type sceneAction int

const (
	actionNone sceneAction = iota
	actionStart
	actionReset
	actionTrigger
	actionPause
	actionToggleSound
	actionToggleHelp
	actionSpeedUp
	actionSpeedDown
	actionDistanceUp
	actionDistanceDown
	actionGravityUp
	actionGravityDown
	actionLeftTiltUp
	actionLeftTiltDown
	actionRightTiltUp
	actionRightTiltDown
)

// keyBinding 按键到操作的映射（按顺序检查，保证同一帧多键时处理顺序固定）
type keyBinding struct {
	key    ebiten.Key
	action sceneAction
	label  string
}

var keyBindings = []keyBinding{
	{ebiten.KeySpace, actionStart, "Space  start"},
	{ebiten.KeyR, actionReset, "R      reset"},
	{ebiten.KeyT, actionTrigger, "T      splash"},
	{ebiten.KeyP, actionPause, "P      pause"},
	{ebiten.KeyM, actionToggleSound, "M      sound"},
	{ebiten.KeyF1, actionToggleHelp, "F1     help"},
	{ebiten.KeyArrowUp, actionSpeedUp, "Up/Dn  speed"},
	{ebiten.KeyArrowDown, actionSpeedDown, ""},
	{ebiten.KeyArrowRight, actionDistanceUp, "Lt/Rt  distance"},
	{ebiten.KeyArrowLeft, actionDistanceDown, ""},
	{ebiten.KeyG, actionGravityUp, "G/B    gravity"},
	{ebiten.KeyB, actionGravityDown, ""},
	{ebiten.KeyQ, actionLeftTiltUp, "Q/A    left tilt"},
	{ebiten.KeyA, actionLeftTiltDown, ""},
	{ebiten.KeyW, actionRightTiltUp, "W/S    right tilt"},
	{ebiten.KeyS, actionRightTiltDown, ""},
}

// 每次按键的调整步长，范围与配置校验一致
const (
	speedStep    = 5.0
	distanceStep = 5.0
	gravityStep  = 1.0
	tiltStep     = 5.0
)

// handleInput 读取本帧按下的键并执行对应操作
func (s *ClinkScene) handleInput() {
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			s.apply(b.action)
		}
	}

	// 触摸/点击：没有键盘的设备也能碰杯
	if tapped, _, _ := input.IsJustTouchedOrClicked(); tapped {
		s.apply(tapAction(s.sim.Phase()))
	}
}

// tapAction 点击屏幕时的操作：就绪时开始，否则复位
func tapAction(phase systems.ClinkPhase) sceneAction {
	if phase == systems.PhaseReady {
		return actionStart
	}
	return actionReset
}

// apply 执行一个操作
func (s *ClinkScene) apply(action sceneAction) {
	switch action {
	case actionStart:
		s.sim.Start()
	case actionReset:
		s.sim.Reset()
	case actionTrigger:
		s.sim.Trigger(s.triggerIntensity)
	case actionPause:
		s.paused = !s.paused
	case actionToggleSound:
		if s.audio != nil {
			s.audio.SetEnabled(!s.audio.Enabled())
		}
	case actionToggleHelp:
		s.showHelp = !s.showHelp
	default:
		s.adjustConfig(action)
	}
}

// adjustConfig 调整一个可调参数并提交给模拟
func (s *ClinkScene) adjustConfig(action sceneAction) {
	cfg := s.sim.Config()
	m := &cfg.Motion

	switch action {
	case actionSpeedUp:
		m.Speed = utils.Clamp(m.Speed+speedStep, speedStep, 100)
	case actionSpeedDown:
		m.Speed = utils.Clamp(m.Speed-speedStep, speedStep, 100)
	case actionDistanceUp:
		m.StartDistance = utils.Clamp(m.StartDistance+distanceStep, minStartDistance(cfg), 100)
	case actionDistanceDown:
		m.StartDistance = utils.Clamp(m.StartDistance-distanceStep, minStartDistance(cfg), 100)
	case actionGravityUp:
		m.Gravity = utils.Clamp(m.Gravity+gravityStep, -30, 0)
	case actionGravityDown:
		m.Gravity = utils.Clamp(m.Gravity-gravityStep, -30, 0)
	case actionLeftTiltUp:
		m.LeftTilt.Z = utils.Clamp(m.LeftTilt.Z+tiltStep, -30, 30)
	case actionLeftTiltDown:
		m.LeftTilt.Z = utils.Clamp(m.LeftTilt.Z-tiltStep, -30, 30)
	case actionRightTiltUp:
		m.RightTilt.Z = utils.Clamp(m.RightTilt.Z+tiltStep, -30, 30)
	case actionRightTiltDown:
		m.RightTilt.Z = utils.Clamp(m.RightTilt.Z-tiltStep, -30, 30)
	default:
		return
	}

	if err := s.sim.UpdateConfig(cfg); err != nil {
		log.Printf("[ClinkScene] 参数调整被拒绝: %v", err)
	}
}

// minStartDistance 两杯不重叠所需的最小起始间距（取 20 与杯宽之上最近的步长）
func minStartDistance(cfg *config.SimulationConfig) float64 {
	min := 20.0
	for min <= 2*cfg.Physics.MugHalfWidth {
		min += distanceStep
	}
	return min
}
