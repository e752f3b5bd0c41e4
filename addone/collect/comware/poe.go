package comware

import (
	"regexp"
	"strings"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

// poeInterfaceDialects display poe interface 的行格式
var poeInterfaceDialects = []collect.Dialect[collect.PoePort]{
	{
		// Interface Enable Priority CurPower(W) Operating-Status IEEE-Class Detection-Status
		Name: "poe-interface",
		Re:   regexp.MustCompile(`(?i)^\s*(\S+)\s+(enable|disable)\s+(\w+)\s+` + numExpr + `\s+(on|off)\s+(\S+)\s+(\S+)`),
		Extract: func(m []string) (collect.PoePort, bool) {
			w, ok := collect.ParseFloat(m[4])
			if !ok {
				return collect.PoePort{}, false
			}
			return collect.PoePort{
				Name:            m[1],
				PoeEnabled:      strings.EqualFold(m[2], "enable"),
				Priority:        m[3],
				PowerWatts:      w,
				OperatingStatus: strings.ToLower(m[5]),
				IEEEClass:       m[6],
				DetectionStatus: m[7],
			}, true
		},
	},
	{
		// 旧固件：名称 状态 等级 功率
		Name: "name-status-class-power",
		Re:   regexp.MustCompile(`(?i)^\s*` + physPortExpr + `\s+(\w+)\s+(\w+)\s+` + numExpr),
		Extract: func(m []string) (collect.PoePort, bool) {
			w, ok := collect.ParseFloat(m[4])
			if !ok {
				return collect.PoePort{}, false
			}
			status := strings.ToLower(m[2])
			p := collect.PoePort{
				Name:            joinPortName(m[1]),
				PoeEnabled:      status == "enable" || status == "enabled" || status == "on",
				PowerWatts:      w,
				IEEEClass:       m[3],
				OperatingStatus: "off",
			}
			if w > 0 {
				p.OperatingStatus = "on"
			}
			return p, true
		},
	},
}

var poePortsOnDialects = []collect.Dialect[int64]{
	collect.IntField("ports-on-summary", `(?im)^\s*-*\s*(\d+)\s+port\(s\)\s+on`),
}

// ParsePoeInterfaces 解析 display poe interface
// poe_ports_on 优先取汇总行，缺失时按 on 状态计数
func ParsePoeInterfaces(raw string) *collect.PoeInterfaceTable {
	r := &collect.PoeInterfaceTable{Ports: make([]collect.PoePort, 0), Raw: raw}
	seen := make(map[string]struct{})
	on := 0
	for _, p := range collect.ScanLines(raw, poeInterfaceDialects) {
		if _, dup := seen[p.Name]; dup {
			continue
		}
		seen[p.Name] = struct{}{}
		r.Ports = append(r.Ports, p)
		if p.OperatingStatus == "on" {
			on++
		}
	}
	r.PortsOn = on
	if n := collect.FindInt(raw, poePortsOnDialects); n != nil {
		r.PortsOn = int(*n)
	}
	return r
}

var (
	pseTotalDialects = []collect.Dialect[float64]{
		collect.FloatField("pse-max-power", `(?im)^\s*PSE\s+Max(?:imum)?\s+Power\s*:\s*`+numExpr),
		collect.FloatField("maximum-total-power", `(?im)^\s*(?:PSE\s+)?(?:Maximum|Total)\s+Power\s*:\s*`+numExpr),
	}
	pseUsedDialects = []collect.Dialect[float64]{
		collect.FloatField("pse-total-power-consumption", `(?im)^\s*PSE\s+Total\s+Power\s+Consumption\s*:\s*`+numExpr),
		collect.FloatField("pse-current-power", `(?im)^\s*PSE\s+Current\s+Power\s*:\s*`+numExpr),
		collect.FloatField("consuming-used-current-power", `(?im)^\s*(?:Consuming|Used|Current)\s+Power\s*:\s*`+numExpr),
	}
	pseRemainingDialects = []collect.Dialect[float64]{
		collect.FloatField("pse-available-power", `(?im)^\s*PSE\s+(?:Available|Remaining\s+Guaranteed)\s+Power\s*:\s*`+numExpr),
		collect.FloatField("remaining-available-power", `(?im)^\s*(?:Remaining|Available)\s+Power\s*:\s*`+numExpr),
	}
	psePeakDialects = []collect.Dialect[float64]{
		collect.FloatField("pse-peak", `(?im)^\s*PSE\s+Peak\s+(?:Value|Power)\s*:\s*`+numExpr),
		collect.FloatField("peak-power", `(?im)^\s*Peak\s+Power\s*:\s*`+numExpr),
	}
)

// ParsePoePower 解析 PSE 功率汇总（display poe power-state / display poe pse）
func ParsePoePower(raw string) *collect.PoePower {
	return &collect.PoePower{
		Total:     collect.FindFloat(raw, pseTotalDialects),
		Used:      collect.FindFloat(raw, pseUsedDialects),
		Remaining: collect.FindFloat(raw, pseRemainingDialects),
		Peak:      collect.FindFloat(raw, psePeakDialects),
		Raw:       raw,
	}
}
