package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// OutputLines 命令回显的头部和尾部行
type OutputLines struct {
	HeadLines []string `json:"head_lines"`
	TailLines []string `json:"tail_lines"`
}

// ParseOutputLines 提取回显的头尾各 maxLines 行（空白行不计）
func ParseOutputLines(output string, maxLines int) OutputLines {
	if maxLines <= 0 {
		maxLines = 5
	}
	output = strings.ReplaceAll(output, "\r\n", "\n")

	lines := make([]string, 0)
	for _, ln := range strings.Split(output, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) == 0 {
		return OutputLines{}
	}

	n := maxLines
	if n > len(lines) {
		n = len(lines)
	}
	out := OutputLines{
		HeadLines: append([]string{}, lines[:n]...),
	}
	// 行数不超过 maxLines 时头尾相同，只保留头部
	if len(lines) > maxLines {
		out.TailLines = append([]string{}, lines[len(lines)-n:]...)
	}
	return out
}

// FormatOutputLines 格式化为单行日志文本
func FormatOutputLines(lines OutputLines) string {
	parts := make([]string, 0, 2)
	if len(lines.HeadLines) > 0 {
		parts = append(parts, "head-lines: ["+strings.Join(lines.HeadLines, " ⟩ ")+"]")
	}
	if len(lines.TailLines) > 0 {
		parts = append(parts, "tail-lines: ["+strings.Join(lines.TailLines, " ⟩ ")+"]")
	}
	return strings.Join(parts, ", ")
}

// DebugCommandOutput 在debug级别记录命令回显的head/tail-lines
func DebugCommandOutput(command string, output string, maxLines int) {
	if GetLogger().Level < logrus.DebugLevel {
		return
	}
	lines := ParseOutputLines(output, maxLines)
	if len(lines.HeadLines) == 0 {
		return
	}
	Debugf("Command echo [%s]: %s", command, FormatOutputLines(lines))
}
