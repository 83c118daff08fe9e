// Package main 以固定步长无界面地运行若干次碰杯，输出粒子池统计
//
// 用于调整发射器容量与数量参数：Dropped 大于 0 说明粒子池已饱和。
//
// Usage:
//
//	go run ./cmd/splash-bench --clinks 20 --seed 7
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/decker502/beerclink/pkg/config"
	"github.com/decker502/beerclink/pkg/simulation"
	"github.com/decker502/beerclink/pkg/systems"
)

var (
	configFlag  = flag.String("config", "data/simulation.yaml", "模拟配置文件路径")
	envFlag     = flag.String("env", "", "可选的 .env 文件")
	seedFlag    = flag.Int64("seed", 0, "随机数种子（0 表示使用配置值）")
	clinksFlag  = flag.Int("clinks", 10, "碰杯次数")
	maxTicks    = flag.Int("max-ticks", 6000, "单次碰杯的最大 tick 数")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	if !*verboseFlag {
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
	sim, err := simulation.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create simulation: %v\n", err)
		os.Exit(1)
	}

	dt := 1.0 / float64(config.TickRate)
	start := time.Now()
	ticks := 0
	peak := 0

	for i := 0; i < *clinksFlag; i++ {
		if !sim.Start() {
			fmt.Fprintf(os.Stderr, "clink %d: simulation not ready (phase %s)\n", i+1, sim.Phase())
			os.Exit(1)
		}

		n := 0
		lowest := 1.0
		for ; n < *maxTicks; n++ {
			sim.Tick(dt)
			snap := sim.Snapshot()
			peak = max(peak, snap.ActiveParticles())
			lowest = min(lowest, snap.Mugs[0].Level, snap.Mugs[1].Level)

			// 自动复位后回到 Ready
			if sim.Phase() == systems.PhaseReady {
				break
			}
		}
		ticks += n
		if n == *maxTicks {
			fmt.Fprintf(os.Stderr, "clink %d: did not reset within %d ticks\n", i+1, *maxTicks)
			os.Exit(1)
		}

		fmt.Printf("clink %3d  t=%7.2fs  ticks=%5d  lowest level=%.3f\n", i+1, sim.Now(), n, lowest)
	}

	elapsed := time.Since(start)
	snap := sim.Snapshot()

	fmt.Printf("\nseed=%d clinks=%d ticks=%d wall=%s (%.1f ticks/ms) peak particles=%d\n",
		sim.Seed(), sim.Clinks(), ticks, elapsed.Round(time.Millisecond),
		float64(ticks)/float64(max(elapsed.Milliseconds(), 1)), peak)
	fmt.Printf("%-7s %-5s %8s %8s %9s %8s %8s\n", "kind", "side", "capacity", "triggers", "activated", "dropped", "expired")
	for _, e := range snap.Emitters {
		fmt.Printf("%-7s %-5s %8d %8d %9d %8d %8d\n",
			e.Kind, e.Side, e.Capacity, e.Triggers, e.Activated, e.Dropped, e.Expired)
	}
}
