package comware

import (
	"regexp"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

var arpDialects = []collect.Dialect[collect.ArpEntry]{
	{
		// IP Address  MAC Address  VLAN ID  Interface  Aging  Type
		Name: "ip-mac-vlan-iface-aging-type",
		Re:   regexp.MustCompile(`(?i)^\s*` + ipExpr + `\s+` + macExpr + `\s+(\d+|N/A)\s+(\S+)\s+(\d+|N/A)\s+([A-Z]+)\s*$`),
		Extract: func(m []string) (collect.ArpEntry, bool) {
			return collect.ArpEntry{
				IPAddress:  m[1],
				MACAddress: m[2],
				VLAN:       collect.Atoi(m[3]),
				Interface:  m[4],
				Aging:      m[5],
				Type:       m[6],
			}, true
		},
	},
	{
		Name: "ip-mac-vlan-iface-type",
		Re:   regexp.MustCompile(`(?i)^\s*` + ipExpr + `\s+` + macExpr + `\s+(\d+)\s+(\S+)\s+(\w+)`),
		Extract: func(m []string) (collect.ArpEntry, bool) {
			return collect.ArpEntry{
				IPAddress:  m[1],
				MACAddress: m[2],
				VLAN:       collect.Atoi(m[3]),
				Interface:  m[4],
				Type:       m[5],
			}, true
		},
	},
}

var arpCountDialects = []collect.Dialect[int64]{
	collect.IntField("entries-found", `(?im)(\d+)\s+entr(?:y|ies)(?:\(ies\))?\s+found`),
}

// ParseArpTable 解析 display arp
func ParseArpTable(raw string) *collect.ArpTable {
	r := &collect.ArpTable{Entries: collect.ScanLines(raw, arpDialects), Raw: raw}
	r.Count = len(r.Entries)
	if n := collect.FindInt(raw, arpCountDialects); n != nil {
		r.Count = int(*n)
	}
	return r
}
