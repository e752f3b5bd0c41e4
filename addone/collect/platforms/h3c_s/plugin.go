package h3c_s

import (
	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
	"github.com/switchcollectorpro/switchcollectorpro/addone/collect/comware"
)

// Plugin 为 h3c_s 平台插件（Comware 输出格式与 V1910 一致）
type Plugin struct{}

func (p *Plugin) Name() string { return "h3c_s" }

// SystemCommands 返回系统内置的 H3C S 系列采集命令
func (p *Plugin) SystemCommands() []string {
	cmds := comware.Commands()
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		// S 系列使用 display poe pse 输出 PSE 汇总
		if c == "display poe power-state" {
			c = "display poe pse"
		}
		out = append(out, c)
	}
	return out
}

// Parse 路由到具体命令处理
func (p *Plugin) Parse(ctx collect.ParseContext, raw string) (collect.ParseOutput, error) {
	return comware.Parse(ctx, raw)
}

func init() { collect.Register("h3c_s", &Plugin{}) }
