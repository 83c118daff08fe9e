// Package main 是碰杯模拟的桌面入口
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--config <path>   模拟配置文件（默认 data/simulation.yaml，不存在时使用内嵌默认值）
//	--env <path>      可选的 .env 文件，CLINK_* 变量覆盖配置
//	--seed <n>        随机数种子（0 表示使用配置中的种子）
//	--verbose         输出详细日志
//	--mute            不初始化音频
//
// Controls:
//
//	Space      - 开始碰杯
//	R          - 复位
//	T          - 手动触发飞溅
//	P          - 暂停
//	M          - 开关声音
//	F1         - 显示帮助
//	F5         - 重新加载配置
//	F11        - 切换全屏
//	Escape     - 退出
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/beerclink/pkg/app"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/embedded"
)

var (
	configFlag  = flag.String("config", "data/simulation.yaml", "模拟配置文件路径")
	envFlag     = flag.String("env", "", "可选的 .env 文件")
	seedFlag    = flag.Int64("seed", 0, "随机数种子（0 表示使用配置值）")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	muteFlag    = flag.Bool("mute", false, "不初始化音频")
)

func main() {
	flag.Parse()

	// 注册内嵌默认配置（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		ConfigPath: *configFlag,
		EnvFile:    *envFlag,
		Seed:       *seedFlag,
		Muted:      *muteFlag,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Beer Clink")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TickRate)

	if err := ebiten.RunGame(gameApp); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
