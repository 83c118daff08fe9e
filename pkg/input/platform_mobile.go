//go:build mobile

package input

// IsMobile 检测当前是否在移动设备上运行
// 移动端编译时返回 true，场景据此显示触摸提示
func IsMobile() bool {
	return true
}
