package hp_v1910

import "github.com/switchcollectorpro/switchcollectorpro/addone/interact"

// 出厂固化的扩展命令集口令
const defaultUnlockSecret = "512900"

// Plugin 为 hp_v1910 平台交互插件（HP V1910 / Comware 5 Web 管理型交换机）
// 登录后只有受限命令集，需要 _cmdline-mode on 解锁 display 系列命令
type Plugin struct{}

func (p *Plugin) Name() string { return "hp_v1910" }

func (p *Plugin) Defaults() interact.InteractDefaults {
	d := (&interact.DefaultPlugin{}).Defaults()
	d.Timeout = 10
	// 用户视图提示符为 <sysname>
	d.CommandPromptSuffixes = []string{">"}
	d.UnlockCommand = "_cmdline-mode on"
	d.UnlockSecret = defaultUnlockSecret
	d.ConfirmAnswer = "Y"
	return d
}

func (p *Plugin) TransformCommands(in interact.CommandTransformInput) interact.CommandTransformOutput {
	// V1910 不支持 screen-length disable，依赖会话逐页翻页
	return interact.CommandTransformOutput{Commands: append([]string{}, in.Commands...)}
}

func init() { interact.Register("hp_v1910", &Plugin{}) }
