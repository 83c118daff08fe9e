//go:build mobile

// embed.go - 移动端配置嵌入声明
//
// 构建前需要把 data/simulation.yaml 复制到此目录：
//
//	mkdir -p mobile/data && cp data/simulation.yaml mobile/data/
//	go build -tags mobile ./mobile
package mobile

import "embed"

//go:embed data/simulation.yaml
var dataFS embed.FS
