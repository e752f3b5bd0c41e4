package comware

import (
	"strings"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

// Command 一条采集命令及其解析函数
type Command struct {
	Command string
	Parse   func(raw string) collect.Record
}

// Catalog 一轮采集的固定命令序列，顺序即执行顺序
var Catalog = []Command{
	{"display version", func(raw string) collect.Record { return ParseVersion(raw) }},
	{"display device manuinfo", func(raw string) collect.Record { return ParseManuinfo(raw) }},
	{"display cpu-usage", func(raw string) collect.Record { return ParseCPU(raw) }},
	{"display memory", func(raw string) collect.Record { return ParseMemory(raw) }},
	{"display interface brief", func(raw string) collect.Record { return ParseInterfaces(raw) }},
	{"display poe interface", func(raw string) collect.Record { return ParsePoeInterfaces(raw) }},
	{"display poe power-state", func(raw string) collect.Record { return ParsePoePower(raw) }},
	{"display fan", func(raw string) collect.Record { return ParseFans(raw) }},
	{"display environment", func(raw string) collect.Record { return ParseEnvironment(raw) }},
	{"display lldp neighbor-information brief", func(raw string) collect.Record { return ParseNeighbors(raw) }},
	{"display mac-address", func(raw string) collect.Record { return ParseMacTable(raw) }},
	{"display vlan all", func(raw string) collect.Record { return ParseVLANs(raw) }},
	{"display arp", func(raw string) collect.Record { return ParseArpTable(raw) }},
}

// 命令别名（缩写与新固件的等价命令）
var aliases = map[string]string{
	"display poe pse": "display poe power-state",
	"dis version":     "display version",
	"display vlan":    "display vlan all",
}

// Commands Catalog 中的命令文本
func Commands() []string {
	out := make([]string, 0, len(Catalog))
	for _, c := range Catalog {
		out = append(out, c.Command)
	}
	return out
}

// Lookup 按命令文本查找解析函数（大小写与多余空白不敏感）
func Lookup(command string) (func(raw string) collect.Record, bool) {
	cmd := strings.ToLower(strings.Join(strings.Fields(command), " "))
	if a, ok := aliases[cmd]; ok {
		cmd = a
	}
	for _, c := range Catalog {
		if c.Command == cmd {
			return c.Parse, true
		}
	}
	return nil, false
}

// Parse 路由到具体命令的解析；未知命令只保留原始回显
func Parse(ctx collect.ParseContext, raw string) (collect.ParseOutput, error) {
	out := collect.ParseOutput{Platform: ctx.Platform, Command: ctx.Command, Raw: raw}
	if fn, ok := Lookup(ctx.Command); ok {
		out.Record = fn(raw)
	}
	return out, nil
}
