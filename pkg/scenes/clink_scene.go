package scenes

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/components"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/game"
	"github.com/decker502/beerclink/pkg/input"
	"github.com/decker502/beerclink/pkg/simulation"
)

// 颜色
var (
	backgroundColor = color.RGBA{R: 24, G: 26, B: 34, A: 255}
	tableColor      = color.RGBA{R: 92, G: 64, B: 40, A: 255}
	glassColor      = color.RGBA{R: 200, G: 220, B: 235, A: 70}
	glassEdgeColor  = color.RGBA{R: 220, G: 235, B: 245, A: 200}
	beerColor       = color.RGBA{R: 230, G: 160, B: 30, A: 220}
	foamColor       = color.RGBA{R: 250, G: 248, B: 235, A: 255}
	splashColor     = color.RGBA{R: 240, G: 180, B: 50, A: 255}
	bubbleColor     = color.RGBA{R: 255, G: 255, B: 245, A: 255}
	hudColor        = color.RGBA{R: 0, G: 0, B: 0, A: 140}
)

// foamThickness 泡沫层厚度（世界单位）
const foamThickness = 3.0

// sloshVisualGain 泡沫晃动偏移的显示放大倍数
const sloshVisualGain = 4.0

// ClinkScene 碰杯舞台
//
// 侧视图：X 向右、Y 向上，桌面位于 config.TableScreenY。
// 场景本身不持有任何模拟状态，每帧从 Snapshot 读取。
type ClinkScene struct {
	sim   *simulation.Simulation
	audio *game.AudioManager

	pixel *ebiten.Image // 1x1 白色像素，用于绘制可旋转的矩形

	triggerIntensity float64
	paused           bool
	showHelp         bool
}

// NewClinkScene 创建碰杯场景
//
// 参数:
//   - sim: 模拟实例
//   - audio: 音频管理器（可为 nil）
//
// 返回:
//   - *ClinkScene: 场景实例
func NewClinkScene(sim *simulation.Simulation, audio *game.AudioManager) *ClinkScene {
	return &ClinkScene{
		sim:              sim,
		audio:            audio,
		triggerIntensity: 1.0,
		showHelp:         true,
	}
}

// Update 处理输入并推进模拟
func (s *ClinkScene) Update(deltaTime float64) {
	s.handleInput()
	if !s.paused {
		s.sim.Tick(deltaTime)
	}
}

// Close 释放音频播放器
func (s *ClinkScene) Close() {
	if s.audio != nil {
		s.audio.Close()
	}
}

// Paused 返回是否暂停
func (s *ClinkScene) Paused() bool {
	return s.paused
}

// Draw 绘制桌面、酒杯、粒子与 HUD
func (s *ClinkScene) Draw(screen *ebiten.Image) {
	if s.pixel == nil {
		s.pixel = ebiten.NewImage(1, 1)
		s.pixel.Fill(color.White)
	}

	snap := s.sim.Snapshot()

	screen.Fill(backgroundColor)
	s.drawTable(screen)
	for _, mug := range snap.Mugs {
		s.drawMug(screen, snap, mug)
	}
	s.drawParticles(screen, snap.Particles)
	s.drawHUD(screen, snap)
}

func (s *ClinkScene) drawTable(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, float32(config.TableScreenY),
		float32(config.GameWindowWidth), float32(config.GameWindowHeight-config.TableScreenY), tableColor, false)
}

// drawMug 绘制一个酒杯：杯身、啤酒、泡沫与把手，整体按刚体转角旋转
func (s *ClinkScene) drawMug(screen *ebiten.Image, snap simulation.Snapshot, mug simulation.MugView) {
	hw, hh := snap.HalfWidth, snap.HalfHeight
	cx, cy := WorldToScreen(mug.Position)
	angle := mug.Angle
	scale := config.WorldToScreenScale

	// 杯身
	s.drawRotatedRect(screen, cx, cy, 0, 0, 2*hw*scale, 2*hh*scale, angle, glassColor)

	// 啤酒：从杯底到泡沫底部
	liquidTop := math.Max(0, mug.FoamY-foamThickness)
	liquidCenter := -hh + liquidTop/2
	s.drawRotatedRect(screen, cx, cy, 0, -liquidCenter*scale, 2*(hw-0.6)*scale, liquidTop*scale, angle, beerColor)

	// 泡沫：随晃动横向偏移
	foamCenter := -hh + mug.FoamY - foamThickness/2
	s.drawRotatedRect(screen, cx, cy, mug.FoamSlosh*sloshVisualGain*scale, -foamCenter*scale,
		2*(hw-0.6)*scale, foamThickness*scale, angle, foamColor)

	// 把手在外侧
	outward := -mug.Side.Direction()
	s.drawRotatedRect(screen, cx, cy, outward*(hw+2)*scale, 0, 4*scale, hh*scale, angle, glassEdgeColor)

	// 杯沿
	s.drawRotatedRect(screen, cx, cy, 0, -hh*scale, 2*hw*scale, 2, angle, glassEdgeColor)
}

// drawRotatedRect 以 (cx, cy) 为旋转中心绘制一个矩形
// (lx, ly) 为矩形中心相对旋转中心的屏幕偏移（旋转前）
func (s *ClinkScene) drawRotatedRect(screen *ebiten.Image, cx, cy, lx, ly, w, h, angle float64, clr color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(lx-w/2, ly-h/2)
	// 屏幕 Y 轴向下，世界中的逆时针对应屏幕中的顺时针
	op.GeoM.Rotate(-angle)
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleWithColor(premultiply(clr))
	screen.DrawImage(s.pixel, op)
}

func (s *ClinkScene) drawParticles(screen *ebiten.Image, particles []simulation.ParticleView) {
	for _, p := range particles {
		x, y := WorldToScreen(p.Position)
		base := splashColor
		if p.Kind == particle.KindFoam {
			base = bubbleColor
		}
		clr := color.RGBA{R: base.R, G: base.G, B: base.B, A: uint8(255 * p.Opacity)}
		r := math.Max(1, p.Scale*config.WorldToScreenScale)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), premultiply(clr), true)
	}
}

func (s *ClinkScene) drawHUD(screen *ebiten.Image, snap simulation.Snapshot) {
	cfg := s.sim.Config()
	vector.DrawFilledRect(screen, 0, 0, float32(config.GameWindowWidth), 84, hudColor, false)

	status := fmt.Sprintf("phase: %-11s t=%6.2fs  clinks: %d  gravity: %6.2f  particles: %d",
		snap.Phase, snap.Time, snap.Clinks, snap.Gravity, snap.ActiveParticles())
	if s.paused {
		status += "  [PAUSED]"
	}
	ebitenutil.DebugPrintAt(screen, status, 10, 8)

	params := fmt.Sprintf("distance %.0f  speed %.0f  gravity %.0f  tilt L %.0f / R %.0f",
		cfg.Motion.StartDistance, cfg.Motion.Speed, cfg.Motion.Gravity, cfg.Motion.LeftTilt.Z, cfg.Motion.RightTilt.Z)
	ebitenutil.DebugPrintAt(screen, params, 10, 26)

	levels := fmt.Sprintf("level L %.2f (%s)  R %.2f (%s)",
		snap.Mugs[components.MugLeft].Level, snap.Mugs[components.MugLeft].LiquidPhase,
		snap.Mugs[components.MugRight].Level, snap.Mugs[components.MugRight].LiquidPhase)
	if s.audio != nil && !s.audio.Enabled() {
		levels += "  sound off"
	}
	ebitenutil.DebugPrintAt(screen, levels, 10, 44)

	if input.IsMobile() {
		ebitenutil.DebugPrintAt(screen, "tap: clink / reset", 10, 62)
		return
	}

	if s.showHelp {
		y := 100
		for _, b := range keyBindings {
			if b.label == "" {
				continue
			}
			ebitenutil.DebugPrintAt(screen, b.label, config.GameWindowWidth-160, y)
			y += 16
		}
	}
}

// WorldToScreen 把世界坐标（X 向右、Y 向上，原点在桌面中心）转换为屏幕坐标
func WorldToScreen(p mgl64.Vec3) (float64, float64) {
	x := float64(config.GameWindowWidth)/2 + p.X()*config.WorldToScreenScale
	y := config.TableScreenY - p.Y()*config.WorldToScreenScale
	return x, y
}

// premultiply 把直通 alpha 颜色转换为 ebiten 使用的预乘 alpha
func premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}
