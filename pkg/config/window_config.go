package config

// 窗口与视图配置常量
const (
	// GameWindowWidth 逻辑屏幕宽度（像素）
	GameWindowWidth = 1024
	// GameWindowHeight 逻辑屏幕高度（像素）
	GameWindowHeight = 640

	// WorldToScreenScale 世界单位到像素的缩放
	WorldToScreenScale = 6.0

	// TableScreenY 桌面在屏幕上的 Y 坐标
	TableScreenY = 520.0

	// TickRate 固定模拟频率（次/秒）
	TickRate = 60
)
