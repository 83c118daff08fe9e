package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/decker502/beerclink/pkg/embedded"
)

// embeddedConfigPath 嵌入的默认配置文件
const embeddedConfigPath = "data/simulation.yaml"

// LoadConfig 加载模拟配置并应用环境变量覆盖
//
// 加载顺序：
//  1. path 指向的 YAML 文件
//  2. 文件不存在时使用嵌入的 data/simulation.yaml
//  3. envFile 与进程环境中的 CLINK_* 变量
//
// 参数:
//   - path: 配置文件路径
//   - envFile: .env 文件路径（可为空）
//
// 返回:
//   - *SimulationConfig: 校验通过的配置
//   - error: 读取、解析或校验失败
func LoadConfig(path, envFile string) (*SimulationConfig, error) {
	cfg, err := LoadSimulationConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || !embedded.IsInitialized() {
			return nil, err
		}

		log.Printf("[Config] %s not found, using embedded defaults", path)
		data, embErr := embedded.ReadFile(embeddedConfigPath)
		if embErr != nil {
			return nil, fmt.Errorf("failed to read embedded config: %w", embErr)
		}
		cfg, err = ParseSimulationConfig(data)
		if err != nil {
			return nil, fmt.Errorf("embedded config: %w", err)
		}
	}

	if err := ApplyEnvOverrides(cfg, envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}
