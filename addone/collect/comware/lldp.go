package comware

import (
	"regexp"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

var neighborDialects = []collect.Dialect[collect.LLDPNeighbor]{
	{
		// Local Interface  Chassis ID  Port ID  System Name
		Name: "local-chassis-port-name",
		Re:   regexp.MustCompile(`(?i)^\s*` + physPortExpr + `\s+(\S+)\s+(\S+)\s+(\S+)\s*$`),
		Extract: func(m []string) (collect.LLDPNeighbor, bool) {
			return collect.LLDPNeighbor{
				LocalPort:      joinPortName(m[1]),
				ChassisID:      m[2],
				NeighborPort:   m[3],
				NeighborDevice: m[4],
			}, true
		},
	},
	{
		Name: "local-device-port",
		Re:   regexp.MustCompile(`(?i)^\s*` + physPortExpr + `\s+(\S+)\s+(\S+)`),
		Extract: func(m []string) (collect.LLDPNeighbor, bool) {
			return collect.LLDPNeighbor{
				LocalPort:      joinPortName(m[1]),
				NeighborDevice: m[2],
				NeighborPort:   m[3],
			}, true
		},
	},
}

// ParseNeighbors 解析 display lldp neighbor-information brief
func ParseNeighbors(raw string) *collect.NeighborTable {
	return &collect.NeighborTable{Neighbors: collect.ScanLines(raw, neighborDialects), Raw: raw}
}
