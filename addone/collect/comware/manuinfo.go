package comware

import "github.com/switchcollectorpro/switchcollectorpro/addone/collect"

// manuinfoField 行首 KEY : value，兜底为任意位置的 KEY : value
func manuinfoField(key string) []collect.Dialect[string] {
	return []collect.Dialect[string]{
		collect.StringField(key, `(?m)^\s*`+key+`\s*:\s*(.+?)\s*$`),
		collect.StringField(key+"-inline", key+`\s*:\s*(.+?)\s*(?:\n|$)`),
	}
}

var (
	deviceNameDialects  = manuinfoField("DEVICE_NAME")
	serialDialects      = manuinfoField("DEVICE_SERIAL_NUMBER")
	macAddressDialects  = manuinfoField("MAC_ADDRESS")
	manufactureDialects = manuinfoField("MANUFACTURING_DATE")
	vendorNameDialects  = manuinfoField("VENDOR_NAME")
)

// ParseManuinfo 解析 display device manuinfo
func ParseManuinfo(raw string) *collect.DeviceInfo {
	return &collect.DeviceInfo{
		DeviceName:        collect.FindString(raw, deviceNameDialects),
		SerialNumber:      collect.FindString(raw, serialDialects),
		MACAddress:        collect.FindString(raw, macAddressDialects),
		ManufacturingDate: collect.FindString(raw, manufactureDialects),
		VendorName:        collect.FindString(raw, vendorNameDialects),
		Raw:               raw,
	}
}
