package comware

import (
	"regexp"
	"strings"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

// 状态列可能是两个单词（Config static）
const macStateExpr = `([A-Za-z]+(?:\s+(?:static|dynamic))?)`

var macDialects = []collect.Dialect[collect.MacEntry]{
	{
		// MAC ADDR  VLAN ID  STATE  PORT INDEX  AGING TIME(s)
		Name: "mac-vlan-state-port-aging",
		Re:   regexp.MustCompile(`(?i)^\s*` + macExpr + `\s+(\d+)\s+` + macStateExpr + `\s+(\S+)\s+(\S+)\s*$`),
		Extract: func(m []string) (collect.MacEntry, bool) {
			return collect.MacEntry{
				MACAddress: m[1],
				VLAN:       collect.Atoi(m[2]),
				State:      strings.Join(strings.Fields(m[3]), " "),
				Port:       m[4],
				Aging:      m[5],
			}, true
		},
	},
	{
		Name: "mac-vlan-state-port",
		Re:   regexp.MustCompile(`(?i)^\s*` + macExpr + `\s+(\d+)\s+` + macStateExpr + `\s+(\S+)`),
		Extract: func(m []string) (collect.MacEntry, bool) {
			return collect.MacEntry{
				MACAddress: m[1],
				VLAN:       collect.Atoi(m[2]),
				State:      strings.Join(strings.Fields(m[3]), " "),
				Port:       m[4],
			}, true
		},
	},
}

var macCountDialects = []collect.Dialect[int64]{
	collect.IntField("mac-found", `(?im)(\d+)\s+mac\s+address(?:\(es\)|es)?\s+found`),
}

// ParseMacTable 解析 display mac-address；条目数优先取 "N mac address(es) found"
func ParseMacTable(raw string) *collect.MacTable {
	r := &collect.MacTable{Entries: collect.ScanLines(raw, macDialects), Raw: raw}
	r.Count = len(r.Entries)
	if n := collect.FindInt(raw, macCountDialects); n != nil {
		r.Count = int(*n)
	}
	return r
}
