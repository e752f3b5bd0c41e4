package interact

// InteractDefaults 定义交互层的默认运行参数
type InteractDefaults struct {
	Timeout int // 秒，单次读取超时
	Retries int // 建连失败时的重试次数

	PromptSuffixes        []string // 登录完成的提示符后缀
	CommandPromptSuffixes []string // 命令结束的提示符后缀
	LoginHints            []string
	PasswordHints         []string
	FailureHints          []string

	MoreMarker string // 分页提示
	MaxPages   int    // 单条命令的翻页上限

	// 扩展命令集解锁（为空表示平台无需解锁）
	UnlockCommand string
	UnlockSecret  string
	ConfirmAnswer string

	ExitCommands []string
	// ErrorHints 命令被设备拒绝时的回显特征，命中则不进入解析
	ErrorHints []string
}

// CommandTransformInput 输入命令与元数据
type CommandTransformInput struct {
	Commands []string
	Metadata map[string]interface{}
}

// CommandTransformOutput 输出转换后的命令
type CommandTransformOutput struct {
	Commands []string
}

// InteractPlugin 交互插件接口
type InteractPlugin interface {
	// Name 插件名称（如：default、hp_v1910、h3c_s）
	Name() string
	// Defaults 返回插件的默认运行参数
	Defaults() InteractDefaults
	// TransformCommands 根据平台特性转换命令序列（如关闭分页）
	TransformCommands(in CommandTransformInput) CommandTransformOutput
}

// DefaultPlugin 系统默认交互插件：Comware 风格提示符，翻页交由会话处理
type DefaultPlugin struct{}

func (p *DefaultPlugin) Name() string { return "default" }

func (p *DefaultPlugin) Defaults() InteractDefaults {
	return InteractDefaults{
		Timeout:               10,
		Retries:               0,
		PromptSuffixes:        []string{">", "#", "]"},
		CommandPromptSuffixes: []string{">", "]"},
		LoginHints:            []string{"login", "username", "user"},
		PasswordHints:         []string{"password"},
		FailureHints:          []string{"invalid", "failed", "denied"},
		MoreMarker:            "---- More ----",
		MaxPages:              20,
		ConfirmAnswer:         "Y",
		ExitCommands:          []string{"quit"},
		ErrorHints:            []string{"% Unrecognized command", "% Incomplete command", "% Wrong parameter", "% Too many parameters"},
	}
}

func (p *DefaultPlugin) TransformCommands(in CommandTransformInput) CommandTransformOutput {
	// 默认不做任何转换
	return CommandTransformOutput{Commands: append([]string{}, in.Commands...)}
}
