// Package comware 解析 Comware 5 系列交换机（HP V1910 / H3C S）的 display 命令回显。
// 每个字段/表格维护有序的方言列表：首个命中者胜出，后续方言用于兼容新旧固件。
// 所有解析函数都是纯函数，未命中的字段保持缺省，不返回错误。
package comware

import "strings"

// 数值与MAC地址的公共片段
const (
	numExpr = `(\d+(?:\.\d+)?)`
	macExpr = `((?:[0-9A-Fa-f]{4}[-.]){2}[0-9A-Fa-f]{4}|(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2})`
	ipExpr  = `(\d{1,3}(?:\.\d{1,3}){3})`
	// 物理口长短名称，用于旧固件的兜底方言
	physPortExpr = `((?:Ten-GigabitEthernet|GigabitEthernet|Ethernet|XGE|GE|Gi)\s*\d+/\d+(?:/\d+)?)`
)

// joinPortName 去除名称中的空白（旧固件可能输出 "GE 1/0/1"）
func joinPortName(s string) string {
	return strings.Join(strings.Fields(s), "")
}
