package collect

// ParseContext 解析上下文
type ParseContext struct {
	Platform string
	Command  string
	PollID   string
}

// ParseOutput 解析输出
type ParseOutput struct {
	Platform string
	Command  string
	Raw      string
	// Record 为 nil 表示该命令无结构化输出（如 screen-length disable）
	Record Record
}

// CollectPlugin 采集插件接口
type CollectPlugin interface {
	Name() string
	// SystemCommands 返回该平台一轮采集的固定命令序列（顺序即执行顺序）
	SystemCommands() []string
	// Parse 将原始命令输出解析为结构化数据；字段缺失不是错误
	Parse(ctx ParseContext, raw string) (ParseOutput, error)
}

// DefaultPlugin 系统默认采集插件
type DefaultPlugin struct{}

func (p *DefaultPlugin) Name() string { return "default" }

// SystemCommands 默认平台不提供内置命令
func (p *DefaultPlugin) SystemCommands() []string { return []string{} }

func (p *DefaultPlugin) Parse(ctx ParseContext, raw string) (ParseOutput, error) {
	// 默认不解析，直接返回原始数据包裹
	return ParseOutput{
		Platform: ctx.Platform,
		Command:  ctx.Command,
		Raw:      raw,
	}, nil
}
