package simulation

// Sounder 碰杯音效播放接口
//
// 桌面版由 game.AudioManager 实现，终端版由 beep 实现。
type Sounder interface {
	PlayClink(intensity float64)
}

// Option 模拟构造选项
type Option func(*Simulation)

// WithSeed 指定随机数种子，覆盖配置中的 Seed
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.seed = seed
	}
}

// WithSound 设置碰杯音效
func WithSound(sounder Sounder) Option {
	return func(s *Simulation) {
		s.sounder = sounder
	}
}

type nopSounder struct{}

func (nopSounder) PlayClink(float64) {}
