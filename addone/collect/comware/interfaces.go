package comware

import (
	"regexp"
	"strings"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

// interfaceDialects display interface brief 的行格式
var interfaceDialects = []collect.Dialect[collect.Port]{
	{
		// bridge 模式表：Interface Link Speed Duplex Link-type PVID [Description]
		Name: "bridge-brief",
		Re:   regexp.MustCompile(`(?i)^\s*(\S+)\s+(UP|DOWN|ADM(?:\s+DOWN)?|Stby)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\d+)(?:\s+(.*?))?\s*$`),
		Extract: func(m []string) (collect.Port, bool) {
			p := collect.Port{
				Name:        m[1],
				Speed:       m[3],
				Duplex:      m[4],
				Type:        m[5],
				PVID:        collect.Atoi(m[6]),
				Description: strings.TrimSpace(m[7]),
			}
			p.LinkStatus, p.AdminDown = linkStatus(m[2])
			return p, true
		},
	},
	{
		// 旧固件：仅名称与链路状态
		Name: "name-link",
		Re:   regexp.MustCompile(`(?i)^\s*` + physPortExpr + `\s+(\w+)\s+(\w+)`),
		Extract: func(m []string) (collect.Port, bool) {
			p := collect.Port{Name: joinPortName(m[1])}
			p.LinkStatus, p.AdminDown = linkStatus(m[2])
			return p, true
		},
	},
}

// linkStatus 归一为 UP/DOWN；ADM 表示管理性关闭
func linkStatus(s string) (string, bool) {
	u := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	switch {
	case u == "UP" || u == "CONNECTED":
		return "UP", false
	case strings.HasPrefix(u, "ADM"):
		return "DOWN", true
	default:
		return "DOWN", false
	}
}

// ParseInterfaces 解析 display interface brief；端口名唯一，重复行取第一次出现
func ParseInterfaces(raw string) *collect.InterfaceTable {
	r := &collect.InterfaceTable{Ports: make([]collect.Port, 0), Raw: raw}
	seen := make(map[string]struct{})
	for _, p := range collect.ScanLines(raw, interfaceDialects) {
		if _, dup := seen[p.Name]; dup {
			continue
		}
		seen[p.Name] = struct{}{}
		r.Ports = append(r.Ports, p)
		if p.LinkStatus == "UP" {
			r.PortsUp++
		} else {
			r.PortsDown++
		}
	}
	return r
}
