package comware

import (
	"regexp"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

var fanDialects = []collect.Dialect[collect.Fan]{
	{
		Name: "fan-colon",
		Re:   regexp.MustCompile(`(?i)^\s*Fan\s*(\d+)\s*:\s*(\w+)`),
		Extract: func(m []string) (collect.Fan, bool) {
			return collect.Fan{ID: collect.Atoi(m[1]), Status: m[2]}, true
		},
	},
	{
		Name: "fan-state",
		Re:   regexp.MustCompile(`(?i)^\s*Fan\s+(\d+)\s+State\s*:\s*(\w+)`),
		Extract: func(m []string) (collect.Fan, bool) {
			return collect.Fan{ID: collect.Atoi(m[1]), Status: m[2]}, true
		},
	},
}

// ParseFans 解析 display fan
func ParseFans(raw string) *collect.FanTable {
	return &collect.FanTable{Fans: collect.ScanLines(raw, fanDialects), Raw: raw}
}

const tempExpr = `(-?\d+(?:\.\d+)?)`

var temperatureRowDialects = []collect.Dialect[collect.TemperatureSensor]{
	{
		// Slot Sensor Temperature Lower Upper...
		Name: "slot-sensor-temp",
		Re:   regexp.MustCompile(`^\s*(\d+)\s+([A-Za-z][\w-]*(?:\s+\d+)?)\s+` + tempExpr + `\s+` + tempExpr + `\s+` + tempExpr),
		Extract: func(m []string) (collect.TemperatureSensor, bool) {
			return temperatureRow(m[1], m[2], m[3], m[4], m[5])
		},
	},
	{
		// SlotNo Temperature Lower-limit Upper-limit
		Name: "slot-temp",
		Re:   regexp.MustCompile(`^\s*(\d+)\s+` + tempExpr + `\s+` + tempExpr + `\s+` + tempExpr + `\s*$`),
		Extract: func(m []string) (collect.TemperatureSensor, bool) {
			return temperatureRow(m[1], "", m[2], m[3], m[4])
		},
	},
}

func temperatureRow(slot, sensor, temp, lower, upper string) (collect.TemperatureSensor, bool) {
	c, ok := collect.ParseFloat(temp)
	if !ok {
		return collect.TemperatureSensor{}, false
	}
	t := collect.TemperatureSensor{Slot: collect.Atoi(slot), Sensor: sensor, Celsius: c}
	if v, ok := collect.ParseFloat(lower); ok {
		t.LowerLimit = &v
	}
	if v, ok := collect.ParseFloat(upper); ok {
		t.UpperLimit = &v
	}
	return t, true
}

var (
	temperatureLabelDialects = []collect.Dialect[float64]{
		collect.FloatField("temperature-label", `(?im)^\s*(?:Temperature|Temp)\s*:\s*`+tempExpr),
	}
	temperatureLooseDialects = []collect.Dialect[float64]{
		collect.FloatField("degrees", `(?i)`+tempExpr+`[ \t]*(?:degrees|C)\b`),
	}
)

// ParseEnvironment 解析 display environment
// 标量温度：标签行 > 表格第一行 > "N degrees/C"
func ParseEnvironment(raw string) *collect.EnvironmentInfo {
	r := &collect.EnvironmentInfo{
		Temperatures: collect.ScanLines(raw, temperatureRowDialects),
		Raw:          raw,
	}
	r.Temperature = collect.FindFloat(raw, temperatureLabelDialects)
	if r.Temperature == nil && len(r.Temperatures) > 0 {
		v := r.Temperatures[0].Celsius
		r.Temperature = &v
	}
	if r.Temperature == nil {
		r.Temperature = collect.FindFloat(raw, temperatureLooseDialects)
	}
	return r
}
