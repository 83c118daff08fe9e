// Package app 提供桌面应用的核心包装器
//
// 该包把窗口、音频、配置加载与场景管理组装在一起，main 包只负责解析命令行参数。
package app

import (
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/game"
	"github.com/decker502/beerclink/pkg/scenes"
	"github.com/decker502/beerclink/pkg/simulation"
)

// audioSampleRate 音频上下文采样率
const audioSampleRate = 48000

// defaultVolume 默认主音量
const defaultVolume = 0.8

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 模拟配置文件路径（不存在时使用嵌入的默认配置）
	ConfigPath string
	// EnvFile 可选的 .env 文件
	EnvFile string
	// Seed 非 0 时覆盖配置中的随机数种子
	Seed int64
	// Muted 不创建音频上下文
	Muted bool
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	audioManager *game.AudioManager
	verbose      bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 调用此函数前，应先调用 embedded.Init() 注册嵌入的默认配置。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	var audioContext *audio.Context
	if !cfg.Muted {
		audioContext = audio.NewContext(audioSampleRate)
	}
	audioManager := game.NewAudioManager(audioContext, defaultVolume)
	log.Printf("[App] AudioManager initialized (muted: %v)", cfg.Muted)

	factory := func() (game.Scene, error) {
		simCfg, err := config.LoadConfig(cfg.ConfigPath, cfg.EnvFile)
		if err != nil {
			return nil, err
		}

		opts := []simulation.Option{simulation.WithSound(audioManager)}
		if cfg.Seed != 0 {
			opts = append(opts, simulation.WithSeed(cfg.Seed))
		}
		sim, err := simulation.New(simCfg, opts...)
		if err != nil {
			return nil, err
		}
		log.Printf("[App] Simulation ready (seed %d)", sim.Seed())
		return scenes.NewClinkScene(sim, audioManager), nil
	}

	// 首次加载失败直接返回错误；之后 F5 重新加载失败时保留当前场景
	scene, err := factory()
	if err != nil {
		audioManager.Close()
		return nil, err
	}
	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(factory)
	sceneManager.SwitchTo(scene)

	return &App{
		sceneManager: sceneManager,
		audioManager: audioManager,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 更新应用逻辑
// 每个 tick 调用一次（config.TickRate 次/秒）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.sceneManager.Close()
		return ebiten.Termination
	}

	// F5 重新读取配置文件并重建模拟
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.sceneManager.Reload()
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.sceneManager.Update(1.0 / float64(config.TickRate))
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Close 释放场景与音频资源
func (a *App) Close() {
	a.sceneManager.Close()
	a.audioManager.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
