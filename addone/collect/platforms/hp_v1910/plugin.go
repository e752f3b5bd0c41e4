package hp_v1910

import (
	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
	"github.com/switchcollectorpro/switchcollectorpro/addone/collect/comware"
)

// Plugin 为 hp_v1910 平台插件
type Plugin struct{}

func (p *Plugin) Name() string { return "hp_v1910" }

// SystemCommands 系统信息、设备信息、CPU、内存、接口、PoE、环境、LLDP、MAC、VLAN、ARP
func (p *Plugin) SystemCommands() []string { return comware.Commands() }

// Parse 路由到具体命令处理
func (p *Plugin) Parse(ctx collect.ParseContext, raw string) (collect.ParseOutput, error) {
	return comware.Parse(ctx, raw)
}

func init() { collect.Register("hp_v1910", &Plugin{}) }
