package comware

import "github.com/switchcollectorpro/switchcollectorpro/addone/collect"

var (
	uptimeDialects = []collect.Dialect[string]{
		collect.StringField("uptime-is", `(?im)uptime\s+is\s+(.+?)\s*$`),
	}
	modelDialects = []collect.Dialect[string]{
		collect.StringField("model-before-uptime", `(?im)^\s*(\S.*?)\s+uptime\s+is\s+`),
	}
	softwareDialects = []collect.Dialect[string]{
		collect.StringField("comware-software", `(?im)^\s*\S*\s*Software,\s*Version\s+(.+?)\s*$`),
		collect.StringField("software-version", `(?im)Software\s+Version\s+(.+?)\s*$`),
	}
	hardwareDialects = []collect.Dialect[string]{
		// 行首锚定，避免命中 [SubSlot n] 子卡的硬件版本
		collect.StringField("hardware-version-is", `(?im)^\s*Hardware\s+Version\s+is\s+(.+?)\s*$`),
		collect.StringField("hardware-version", `(?im)Hardware\s+Version\s+(?:is\s+)?(.+?)\s*$`),
	}
	bootromDialects = []collect.Dialect[string]{
		collect.StringField("bootrom-version-is", `(?im)^\s*Boot(?:rom)?\s+Version\s+(?:is\s+)?(.+?)\s*$`),
		collect.StringField("bootrom-version", `(?im)Boot(?:rom)?\s+Version\s+(.+?)\s*$`),
	}
)

// ParseVersion 解析 display version
func ParseVersion(raw string) *collect.VersionInfo {
	return &collect.VersionInfo{
		Uptime:          collect.FindString(raw, uptimeDialects),
		Model:           collect.FindString(raw, modelDialects),
		SoftwareVersion: collect.FindString(raw, softwareDialects),
		HardwareVersion: collect.FindString(raw, hardwareDialects),
		BootromVersion:  collect.FindString(raw, bootromDialects),
		Raw:             raw,
	}
}
