// Package main 提供终端版碰杯模拟，便于在没有图形环境的机器上观察粒子行为
//
// Usage:
//
//	go run ./cmd/clink-tui [flags]
//
// Flags:
//
//	--config <path>   模拟配置文件（默认 data/simulation.yaml）
//	--env <path>      可选的 .env 文件
//	--seed <n>        随机数种子
//	--mute            关闭声音
//	--verbose         输出详细日志到 stderr
//
// Controls:
//
//	Space   - 开始碰杯
//	r       - 复位
//	t       - 手动触发飞溅
//	p       - 暂停
//	q/Esc   - 退出
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/decker502/beerclink/internal/particle"
	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/simulation"
)

const (
	// worldWidth 终端宽度对应的世界单位
	worldWidth = 120.0
	// clinkToneDuration 碰杯提示音时长
	clinkToneDuration = 350 * time.Millisecond
)

var (
	configFlag  = flag.String("config", "data/simulation.yaml", "模拟配置文件路径")
	envFlag     = flag.String("env", "", "可选的 .env 文件")
	seedFlag    = flag.Int64("seed", 0, "随机数种子（0 表示使用配置值）")
	muteFlag    = flag.Bool("mute", false, "关闭声音")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

// toneSounder 用两个正弦分音合成碰杯声
type toneSounder struct {
	rate  beep.SampleRate
	ready bool
}

func newToneSounder() *toneSounder {
	s := &toneSounder{rate: beep.SampleRate(44100)}
	if err := speaker.Init(s.rate, s.rate.N(time.Second/10)); err != nil {
		// 没有声卡时继续运行
		log.Printf("[TUI] Audio initialization failed: %v", err)
		return s
	}
	s.ready = true
	return s
}

// PlayClink 实现 simulation.Sounder
func (s *toneSounder) PlayClink(intensity float64) {
	if !s.ready || intensity <= 0 {
		return
	}

	high, err := generators.SineTone(s.rate, 2093)
	if err != nil {
		return
	}
	low, err := generators.SineTone(s.rate, 3367)
	if err != nil {
		return
	}

	n := s.rate.N(clinkToneDuration)
	mixed := beep.Mix(beep.Take(n, high), beep.Take(n, low))

	gain := 0.3 * math.Min(intensity, 2) / 2
	speaker.Play(&effects.Volume{Streamer: mixed, Base: 2, Volume: math.Log2(gain)})
}

// viewport 世界坐标到终端字符格的映射
type viewport struct {
	width, height int
	cellsPerUnit  float64
	tableRow      int
}

func newViewport(width, height int) viewport {
	return viewport{
		width:        width,
		height:       height,
		cellsPerUnit: float64(width) / worldWidth,
		tableRow:     height - 3,
	}
}

// cell 把世界坐标转换成字符格（纵向按 2:1 压缩，补偿字符宽高比）
func (v viewport) cell(x, y, tableY float64) (int, int) {
	col := int(math.Round(float64(v.width)/2 + x*v.cellsPerUnit))
	row := int(math.Round(float64(v.tableRow) - (y-tableY)*v.cellsPerUnit/2))
	return col, row
}

type tui struct {
	screen tcell.Screen
	sim    *simulation.Simulation
	paused bool
}

func (t *tui) draw() {
	t.screen.Clear()
	w, h := t.screen.Size()
	vp := newViewport(w, h)
	snap := t.sim.Snapshot()

	tableStyle := tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, vp.tableRow+1, '=', nil, tableStyle)
	}

	glass := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	beer := tcell.StyleDefault.Foreground(tcell.ColorGold)
	foam := tcell.StyleDefault.Foreground(tcell.ColorWhiteSmoke)
	for _, mug := range snap.Mugs {
		bottom := mug.Position.Y() - snap.HalfHeight
		left, top := vp.cell(mug.Position.X()-snap.HalfWidth, mug.Position.Y()+snap.HalfHeight, snap.TableY)
		right, base := vp.cell(mug.Position.X()+snap.HalfWidth, bottom, snap.TableY)
		_, foamRow := vp.cell(0, bottom+mug.FoamY, snap.TableY)

		for row := top; row <= base; row++ {
			for col := left; col <= right; col++ {
				switch {
				case col == left || col == right:
					t.screen.SetContent(col, row, '|', nil, glass)
				case row == base:
					t.screen.SetContent(col, row, '_', nil, glass)
				case row == foamRow:
					t.screen.SetContent(col, row, '~', nil, foam)
				case row > foamRow:
					t.screen.SetContent(col, row, '#', nil, beer)
				}
			}
		}
	}

	for _, p := range snap.Particles {
		col, row := vp.cell(p.Position.X(), p.Position.Y(), snap.TableY)
		if col < 0 || col >= w || row < 0 || row >= h {
			continue
		}
		ch, style := '.', tcell.StyleDefault.Foreground(tcell.ColorOrange)
		if p.Kind == particle.KindFoam {
			ch, style = 'o', tcell.StyleDefault.Foreground(tcell.ColorWhite)
		}
		if p.Opacity < 0.35 {
			style = style.Dim(true)
		}
		t.screen.SetContent(col, row, ch, nil, style)
	}

	status := fmt.Sprintf("%-11s t=%6.2fs g=%6.2f clinks=%d particles=%d  L=%.2f R=%.2f",
		snap.Phase, snap.Time, snap.Gravity, snap.Clinks, snap.ActiveParticles(),
		snap.Mugs[0].Level, snap.Mugs[1].Level)
	if t.paused {
		status += "  [PAUSED]"
	}
	drawText(t.screen, 0, 0, status, tcell.StyleDefault)
	drawText(t.screen, 0, h-1, "Space 开始  r 复位  t 触发  p 暂停  q 退出", tcell.StyleDefault.Dim(true))

	t.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// handleKey 返回 false 表示退出
func (t *tui) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			t.sim.Start()
		case 'r':
			t.sim.Reset()
		case 't':
			t.sim.Trigger(1.0)
		case 'p':
			t.paused = !t.paused
		}
	}
	return true
}

// pollEvents 把屏幕事件转发到 events，run 返回（done 关闭）或屏幕关闭后退出
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			// 屏幕已关闭
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (t *tui) run() {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(t.screen, events, done)

	dt := 1.0 / float64(config.TickRate)
	ticker := time.NewTicker(time.Second / config.TickRate)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !t.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		case <-ticker.C:
			if !t.paused {
				t.sim.Tick(dt)
			}
			t.draw()
		}
	}
}

func main() {
	flag.Parse()

	if *verboseFlag {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.LoadConfig(*configFlag, *envFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var opts []simulation.Option
	if *seedFlag != 0 {
		opts = append(opts, simulation.WithSeed(*seedFlag))
	}
	if !*muteFlag {
		opts = append(opts, simulation.WithSound(newToneSounder()))
	}

	sim, err := simulation.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create simulation: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	(&tui{screen: screen, sim: sim}).run()
}
