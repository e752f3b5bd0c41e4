package util

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// 交换机描述字段（接口/VLAN描述、LLDP系统名）可能由管理员以本地代码页写入
var legacyEncodings = []encoding.Encoding{
	simplifiedchinese.GB18030,
	charmap.Windows1252,
}

// EnsureUTF8Bytes 将设备回显转换为UTF-8；已是合法UTF-8时原样返回
func EnsureUTF8Bytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	for _, enc := range legacyEncodings {
		decoded, err := enc.NewDecoder().Bytes(b)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	// 兜底：逐字节按 Latin-1 映射，保证结果一定是合法UTF-8
	out := make([]rune, 0, len(b))
	for _, c := range b {
		out = append(out, rune(c))
	}
	return string(out)
}
