package h3c_s

import "github.com/switchcollectorpro/switchcollectorpro/addone/interact"

// Plugin 为 h3c_s 平台交互插件（H3C S 系列交换机，完整命令集）
type Plugin struct{}

func (p *Plugin) Name() string { return "h3c_s" }

func (p *Plugin) Defaults() interact.InteractDefaults {
	d := (&interact.DefaultPlugin{}).Defaults()
	d.Timeout = 15
	d.Retries = 1
	d.CommandPromptSuffixes = []string{">"}
	return d
}

func (p *Plugin) TransformCommands(in interact.CommandTransformInput) interact.CommandTransformOutput {
	// 关闭分页，避免长命令输出被暂停
	out := make([]string, 0, len(in.Commands)+1)
	out = append(out, "screen-length disable")
	out = append(out, in.Commands...)
	return interact.CommandTransformOutput{Commands: out}
}

func init() { interact.Register("h3c_s", &Plugin{}) }
