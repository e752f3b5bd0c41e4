package comware

import (
	"regexp"
	"strings"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

var (
	vlanBlockStart = regexp.MustCompile(`(?i)^\s*VLAN\s+ID\s*:\s*(\d+)\s*$`)
	// 块内 "Key: value" 行
	vlanKeyValue = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z -]*?)\s*:\s*(.*?)\s*$`)

	// 旧固件的单行格式 "VLAN 10: name"
	vlanLineDialects = []collect.Dialect[collect.VLAN]{
		{
			Name: "vlan-colon-name",
			Re:   regexp.MustCompile(`(?i)^\s*VLAN\s+(\d+)\s*:\s*(.+?)\s*$`),
			Extract: func(m []string) (collect.VLAN, bool) {
				return collect.VLAN{ID: collect.Atoi(m[1]), Name: m[2]}, true
			},
		},
	}

	vlanCountDialects = []collect.Dialect[int64]{
		collect.IntField("total-vlan-exist", `(?im)Total\s+(\d+)\s+VLAN\s+exist`),
	}
)

// ParseVLANs 解析 display vlan all；条目数优先取 "Total N VLAN exist(s)"
func ParseVLANs(raw string) *collect.VLANTable {
	r := &collect.VLANTable{VLANs: parseVLANBlocks(raw), Raw: raw}
	if len(r.VLANs) == 0 {
		r.VLANs = collect.ScanLines(raw, vlanLineDialects)
	}
	r.Count = len(r.VLANs)
	if n := collect.FindInt(raw, vlanCountDialects); n != nil {
		r.Count = int(*n)
	}
	return r
}

// parseVLANBlocks 以 "VLAN ID: N" 行切分块
func parseVLANBlocks(raw string) []collect.VLAN {
	out := make([]collect.VLAN, 0)
	var cur *collect.VLAN
	// 端口列表可跨多行，记录当前续行归属
	var portList *[]string

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
		}
		cur, portList = nil, nil
	}

	for _, line := range collect.Lines(raw) {
		if m := vlanBlockStart.FindStringSubmatch(line); m != nil {
			flush()
			cur = &collect.VLAN{ID: collect.Atoi(m[1])}
			continue
		}
		if cur == nil {
			continue
		}
		if strings.TrimSpace(line) == "" {
			portList = nil
			continue
		}
		kv := vlanKeyValue.FindStringSubmatch(line)
		if kv == nil {
			if portList != nil {
				*portList = append(*portList, portTokens(line)...)
			}
			continue
		}
		portList = nil
		key := strings.ToLower(strings.Join(strings.Fields(kv[1]), " "))
		switch key {
		case "name":
			cur.Name = kv[2]
		case "vlan type":
			cur.Type = kv[2]
		case "description":
			cur.Description = kv[2]
		case "tagged ports":
			portList = &cur.TaggedPorts
			*portList = append(*portList, portTokens(kv[2])...)
		case "untagged ports":
			portList = &cur.UntaggedPorts
			*portList = append(*portList, portTokens(kv[2])...)
		}
	}
	flush()
	return out
}

func portTokens(s string) []string {
	out := make([]string, 0)
	for _, f := range strings.Fields(s) {
		if strings.EqualFold(f, "none") {
			continue
		}
		out = append(out, f)
	}
	return out
}
