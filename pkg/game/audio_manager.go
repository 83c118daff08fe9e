package game

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// 碰杯音色参数
const (
	// ClinkDuration 单次碰杯声的时长（秒）
	ClinkDuration = 0.35

	// 玻璃杯的两个非谐泛音（Hz）
	clinkFundamental = 2093.0
	clinkOvertone    = 3367.0

	// 振幅衰减速率（1/秒）
	clinkDecay = 14.0

	// maxLivePlayers 同时保留的播放器数量上限
	maxLivePlayers = 8
)

// AudioManager 音频管理器
//
// 碰杯声在运行时合成（两个衰减正弦泛音），不依赖音频资源文件。
// 实现 simulation.Sounder 接口。
type AudioManager struct {
	context *audio.Context
	volume  float64
	enabled bool

	players []*audio.Player // 仍在播放或刚播放完的播放器
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文，为 nil 时所有播放调用都是空操作（无声模式）
//   - volume: 主音量 [0, 1]
//
// 返回：
//   - *AudioManager: 音频管理器实例
func NewAudioManager(ctx *audio.Context, volume float64) *AudioManager {
	return &AudioManager{
		context: ctx,
		volume:  clampUnit(volume),
		enabled: ctx != nil,
	}
}

// PlayClink 按碰撞强度播放一次碰杯声
// 强度越大声音越响，强度 <= 0 时不播放
func (am *AudioManager) PlayClink(intensity float64) {
	if !am.enabled || am.context == nil || !(intensity > 0) {
		return
	}

	am.prune()

	pcm := ClinkPCM(am.context.SampleRate(), intensity)
	player := am.context.NewPlayerFromBytes(pcm)
	player.SetVolume(am.volume)
	player.Play()
	am.players = append(am.players, player)

	log.Printf("[AudioManager] clink intensity %.2f (volume %.2f)", intensity, am.volume)
}

// SetVolume 设置主音量 [0, 1]
func (am *AudioManager) SetVolume(volume float64) {
	am.volume = clampUnit(volume)
}

// Volume 返回主音量
func (am *AudioManager) Volume() float64 {
	return am.volume
}

// SetEnabled 开关音效，没有音频上下文时始终关闭
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled && am.context != nil
}

// Enabled 返回音效是否开启
func (am *AudioManager) Enabled() bool {
	return am.enabled
}

// Close 停止并释放所有播放器
func (am *AudioManager) Close() {
	for _, p := range am.players {
		if err := p.Close(); err != nil {
			log.Printf("[AudioManager] Warning: Failed to close player: %v", err)
		}
	}
	am.players = nil
}

// prune 释放已经播放完的播放器，并限制同时存在的数量
func (am *AudioManager) prune() {
	live := am.players[:0]
	for _, p := range am.players {
		if p.IsPlaying() {
			live = append(live, p)
			continue
		}
		if err := p.Close(); err != nil {
			log.Printf("[AudioManager] Warning: Failed to close player: %v", err)
		}
	}
	for len(live) >= maxLivePlayers {
		if err := live[0].Close(); err != nil {
			log.Printf("[AudioManager] Warning: Failed to close player: %v", err)
		}
		live = live[1:]
	}
	am.players = live
}

// ClinkPCM 合成一段碰杯声
//
// 格式为 ebiten 音频播放器使用的 16 位小端立体声 PCM。
// 振幅 = 0.6 * min(intensity, 2) / 2，随时间指数衰减。
//
// 参数：
//   - sampleRate: 采样率（Hz）
//   - intensity: 碰撞强度（<= 0 时返回静音）
//
// 返回：
//   - []byte: PCM 数据，长度为 采样数 * 4
func ClinkPCM(sampleRate int, intensity float64) []byte {
	samples := int(float64(sampleRate) * ClinkDuration)
	if samples < 0 {
		samples = 0
	}
	buf := make([]byte, samples*4)

	amplitude := 0.0
	if intensity > 0 {
		amplitude = 0.6 * math.Min(intensity, 2) / 2
	}

	for i := 0; i < samples; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := amplitude * math.Exp(-clinkDecay*t)
		v := envelope * (0.7*math.Sin(2*math.Pi*clinkFundamental*t) + 0.3*math.Sin(2*math.Pi*clinkOvertone*t))
		s := int16(clampSigned(v) * math.MaxInt16)

		binary.LittleEndian.PutUint16(buf[i*4:], uint16(s))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(s))
	}
	return buf
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
