package comware

import (
	"math"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
)

var (
	memTotalDialects = []collect.Dialect[int64]{
		collect.IntField("total", `(?im)^\s*Total\s*:\s*(\d+)`),
		collect.IntField("system-total-memory", `(?im)^\s*System\s+Total\s+Memory\s*(?:\(bytes\))?\s*:\s*(\d+)`),
	}
	memUsedDialects = []collect.Dialect[int64]{
		collect.IntField("used", `(?im)^\s*Used\s*:\s*(\d+)`),
		collect.IntField("total-used-memory", `(?im)^\s*Total\s+Used\s+Memory\s*(?:\(bytes\))?\s*:\s*(\d+)`),
	}
	memFreeDialects = []collect.Dialect[int64]{
		collect.IntField("free", `(?im)^\s*Free\s*:\s*(\d+)`),
	}
	memPercentDialects = []collect.Dialect[float64]{
		collect.FloatField("percent-used", `(?i)`+numExpr+`[ \t]*%[ \t]*(?:used|usage)`),
		collect.FloatField("used-rate", `(?im)^\s*Used\s+Rate\s*:\s*`+numExpr+`\s*%`),
	}
)

// ParseMemory 解析 display memory
// total/used 均可解析时 free = total - used，占用率按两者计算并保留1位小数
func ParseMemory(raw string) *collect.MemoryUsage {
	r := &collect.MemoryUsage{
		Total: collect.FindInt(raw, memTotalDialects),
		Used:  collect.FindInt(raw, memUsedDialects),
		Raw:   raw,
	}
	if r.Total != nil && r.Used != nil {
		free := *r.Total - *r.Used
		r.Free = &free
		if *r.Total > 0 {
			pct := math.Round(float64(*r.Used)/float64(*r.Total)*1000) / 10
			r.UsagePercent = &pct
		}
	} else {
		r.Free = collect.FindInt(raw, memFreeDialects)
	}
	if r.UsagePercent == nil {
		r.UsagePercent = collect.FindFloat(raw, memPercentDialects)
	}
	return r
}
