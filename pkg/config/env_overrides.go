package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// 环境变量覆盖
//
// 支持的变量：
//   - CLINK_SEED               随机数种子
//   - CLINK_START_DISTANCE     初始间距
//   - CLINK_SPEED              靠近速度
//   - CLINK_GRAVITY            世界重力
//   - CLINK_REDUCTION_FACTOR   液面下降系数
//   - CLINK_SPLASH_CAPACITY    飞溅粒子池容量
//   - CLINK_FOAM_CAPACITY      泡沫粒子池容量

// ApplyEnvOverrides 读取 envFile（可选）后用环境变量覆盖配置
//
// 参数:
//   - cfg: 待覆盖的配置（原地修改）
//   - envFile: .env 文件路径，为空或文件不存在时只读取进程环境
//
// 返回:
//   - error: .env 解析失败、变量格式错误或覆盖后校验失败
func ApplyEnvOverrides(cfg *SimulationConfig, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
			log.Printf("[Config] env file %s not found, using process environment", envFile)
		}
	}

	if err := envInt64("CLINK_SEED", &cfg.Seed); err != nil {
		return err
	}
	if err := envFloat("CLINK_START_DISTANCE", &cfg.Motion.StartDistance); err != nil {
		return err
	}
	if err := envFloat("CLINK_SPEED", &cfg.Motion.Speed); err != nil {
		return err
	}
	if err := envFloat("CLINK_GRAVITY", &cfg.Motion.Gravity); err != nil {
		return err
	}
	if err := envFloat("CLINK_REDUCTION_FACTOR", &cfg.Liquid.ReductionFactor); err != nil {
		return err
	}
	if err := envInt("CLINK_SPLASH_CAPACITY", &cfg.Emitters.Splash.Capacity); err != nil {
		return err
	}
	if err := envInt("CLINK_FOAM_CAPACITY", &cfg.Emitters.Foam.Capacity); err != nil {
		return err
	}

	return cfg.Validate()
}

func envFloat(key string, dst *float64) error {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, raw)
	}
	*dst = v
	log.Printf("[Config] %s override: %v", key, v)
	return nil
}

func envInt(key string, dst *int) error {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, raw)
	}
	*dst = v
	log.Printf("[Config] %s override: %d", key, v)
	return nil
}

func envInt64(key string, dst *int64) error {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, raw)
	}
	*dst = v
	return nil
}
