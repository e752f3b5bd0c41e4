package telnet

import (
	"strings"
)

// sanitize 移除 ANSI 转义序列与不可见控制符，统一换行为 \n
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s))
	skip := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if skip {
			// 跳过直到命令字符结尾（以字母结尾的 CSI 序列）
			if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
				skip = false
			}
			continue
		}
		if ch == 0x1b {
			skip = true
			continue
		}
		if ch < 0x20 && ch != '\n' && ch != '\t' {
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func lastLine(s string) string {
	s = strings.TrimRight(s, " \t\n")
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

func containsAny(s string, hints []string) bool {
	lower := strings.ToLower(s)
	for _, h := range hints {
		if h != "" && strings.Contains(lower, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if suf != "" && strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// cleanReply 组装 RawReply：去除分页提示、命令回显与末尾提示符
func cleanReply(raw, command, marker, prompt string) string {
	text := sanitize(raw)
	if marker != "" {
		text = strings.ReplaceAll(text, marker, "")
	}
	lines := strings.Split(text, "\n")

	// 命令回显：首个非空行包含命令本身
	for i, ln := range lines {
		t := strings.TrimSpace(ln)
		if t == "" {
			continue
		}
		if cmd := strings.TrimSpace(command); cmd != "" && strings.HasSuffix(t, cmd) {
			lines = lines[i+1:]
		}
		break
	}

	// 末尾空行与提示符
	lines = trimTrailingBlank(lines)
	if n := len(lines); n > 0 && prompt != "" && strings.TrimSpace(lines[n-1]) == prompt {
		lines = trimTrailingBlank(lines[:n-1])
	}
	return strings.Join(lines, "\n")
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
