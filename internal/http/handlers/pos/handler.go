package pos

import "github.com/niaga-pos/internal/provider"

// Handler 收银台接口处理器入口
// 说明：该处理器仅用于门店收银侧 API。
type Handler struct {
	*provider.Container
}

// New 创建收银台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
