package comware

import "github.com/switchcollectorpro/switchcollectorpro/addone/collect"

// CPUDialects 当前CPU占用率的方言，顺序即优先级
// 全部按行首锚定，"in last" 方言限定为 5 秒窗口，避免误取 1/5 分钟均值
var CPUDialects = []collect.Dialect[float64]{
	collect.FloatField("cpu-usage", `(?im)^[ \t]*CPU[ \t]+usage[ \t]*:[ \t]*`+numExpr+`[ \t]*%`),
	collect.FloatField("in-last-5-seconds", `(?im)^[ \t]*`+numExpr+`[ \t]*%[ \t]+in[ \t]+last[ \t]+5[ \t]+seconds?`),
	collect.FloatField("slot-cpu-usage", `(?im)^[ \t]*Slot[ \t]+\d+[ \t]+CPU[ \t]+\d+[ \t]+CPU[ \t]+usage[ \t]*:[ \t]*`+numExpr+`[ \t]*%`),
	collect.FloatField("cpu-utilization", `(?im)^[ \t]*CPU[ \t]+utilization[ \t]*:[ \t]*`+numExpr+`[ \t]*%`),
}

var (
	cpu1mDialects = []collect.Dialect[float64]{
		collect.FloatField("in-last-1-minute", `(?im)^[ \t]*`+numExpr+`[ \t]*%[ \t]+in[ \t]+last[ \t]+1[ \t]+minutes?`),
	}
	cpu5mDialects = []collect.Dialect[float64]{
		collect.FloatField("in-last-5-minutes", `(?im)^[ \t]*`+numExpr+`[ \t]*%[ \t]+in[ \t]+last[ \t]+5[ \t]+minutes?`),
	}
)

// ParseCPU 解析 display cpu-usage
func ParseCPU(raw string) *collect.CPUUsage {
	return &collect.CPUUsage{
		Usage:   collect.FindFloat(raw, CPUDialects),
		Usage1m: collect.FindFloat(raw, cpu1mDialects),
		Usage5m: collect.FindFloat(raw, cpu5mDialects),
		Raw:     raw,
	}
}
