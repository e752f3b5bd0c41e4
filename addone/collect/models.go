package collect

import "time"

// Port 接口状态（display interface brief 单行）
type Port struct {
	Name        string `json:"name"`
	LinkStatus  string `json:"link_status"` // UP / DOWN
	AdminDown   bool   `json:"admin_down,omitempty"`
	Speed       string `json:"speed,omitempty"`
	Duplex      string `json:"duplex,omitempty"`
	Type        string `json:"type,omitempty"`
	PVID        int    `json:"pvid,omitempty"`
	Description string `json:"description,omitempty"`
}

// PoePort 单端口PoE供电状态
type PoePort struct {
	Name            string  `json:"name"`
	PoeEnabled      bool    `json:"poe_enabled"`
	Priority        string  `json:"priority,omitempty"`
	PowerWatts      float64 `json:"power_watts"`
	OperatingStatus string  `json:"operating_status,omitempty"` // on / off
	IEEEClass       string  `json:"ieee_class,omitempty"`
	DetectionStatus string  `json:"detection_status,omitempty"`
}

// Fan 风扇状态
type Fan struct {
	ID     int    `json:"fan_id"`
	Status string `json:"status"`
}

// TemperatureSensor 温度传感器读数（摄氏度）
type TemperatureSensor struct {
	Slot       int      `json:"slot"`
	Sensor     string   `json:"sensor,omitempty"`
	Celsius    float64  `json:"celsius"`
	LowerLimit *float64 `json:"lower_limit,omitempty"`
	UpperLimit *float64 `json:"upper_limit,omitempty"`
}

// LLDPNeighbor LLDP邻居
type LLDPNeighbor struct {
	LocalPort      string `json:"local_port"`
	ChassisID      string `json:"chassis_id,omitempty"`
	NeighborDevice string `json:"neighbor_device"`
	NeighborPort   string `json:"neighbor_port"`
}

// MacEntry MAC地址表项，MACAddress 保留设备原始格式
type MacEntry struct {
	MACAddress string `json:"mac_address"`
	VLAN       int    `json:"vlan"`
	State      string `json:"state"`
	Port       string `json:"port"`
	Aging      string `json:"aging,omitempty"`
}

// ArpEntry ARP表项
type ArpEntry struct {
	IPAddress  string `json:"ip_address"`
	MACAddress string `json:"mac_address"`
	VLAN       int    `json:"vlan"`
	Interface  string `json:"interface"`
	Aging      string `json:"aging,omitempty"`
	Type       string `json:"type"`
}

// VLAN VLAN信息
type VLAN struct {
	ID            int      `json:"vlan_id"`
	Name          string   `json:"name"`
	Type          string   `json:"type,omitempty"`
	Description   string   `json:"description,omitempty"`
	TaggedPorts   []string `json:"tagged_ports,omitempty"`
	UntaggedPorts []string `json:"untagged_ports,omitempty"`
}

// Snapshot 单轮采集的全部结构化数据；JSON 键即对外契约，保持稳定
// 未解析到的字段为零值/nil，序列化时省略
type Snapshot struct {
	// display version
	Uptime          string `json:"uptime,omitempty"`
	Model           string `json:"model,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
	HardwareVersion string `json:"hardware_version,omitempty"`
	BootromVersion  string `json:"bootrom_version,omitempty"`
	VersionRaw      string `json:"version_raw,omitempty"`

	// display device manuinfo
	SerialNumber      string `json:"serial_number,omitempty"`
	DeviceName        string `json:"device_name,omitempty"`
	MACAddress        string `json:"mac_address,omitempty"`
	ManufacturingDate string `json:"manufacturing_date,omitempty"`
	VendorName        string `json:"vendor_name,omitempty"`
	ManuinfoRaw       string `json:"manuinfo_raw,omitempty"`

	CPUUsage   *float64 `json:"cpu_usage,omitempty"`
	CPUUsage1m *float64 `json:"cpu_usage_1m,omitempty"`
	CPUUsage5m *float64 `json:"cpu_usage_5m,omitempty"`
	CPURaw     string   `json:"cpu_raw,omitempty"`

	MemoryTotal        *int64   `json:"memory_total,omitempty"`
	MemoryUsed         *int64   `json:"memory_used,omitempty"`
	MemoryFree         *int64   `json:"memory_free,omitempty"`
	MemoryUsagePercent *float64 `json:"memory_usage_percent,omitempty"`
	MemoryRaw          string   `json:"memory_raw,omitempty"`

	Ports        []Port `json:"ports,omitempty"`
	PortCount    *int   `json:"port_count,omitempty"`
	PortsUp      *int   `json:"ports_up,omitempty"`
	PortsDown    *int   `json:"ports_down,omitempty"`
	InterfaceRaw string `json:"interface_raw,omitempty"`

	PoePorts        []PoePort `json:"poe_ports,omitempty"`
	PoePortsOn      *int      `json:"poe_ports_on,omitempty"`
	PoeInterfaceRaw string    `json:"poe_interface_raw,omitempty"`

	PoePowerTotal     *float64 `json:"poe_power_total,omitempty"`
	PoePowerUsed      *float64 `json:"poe_power_used,omitempty"`
	PoePowerRemaining *float64 `json:"poe_power_remaining,omitempty"`
	PoePeakPower      *float64 `json:"poe_peak_power,omitempty"`
	PoePowerRaw       string   `json:"poe_power_raw,omitempty"`

	Fans   []Fan  `json:"fans,omitempty"`
	FanRaw string `json:"fan_raw,omitempty"`

	Temperatures   []TemperatureSensor `json:"temperatures,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	EnvironmentRaw string              `json:"environment_raw,omitempty"`

	Neighbors []LLDPNeighbor `json:"neighbors,omitempty"`
	LLDPRaw   string         `json:"lldp_raw,omitempty"`

	MacEntries []MacEntry `json:"mac_entries,omitempty"`
	MacCount   *int       `json:"mac_count,omitempty"`
	MacRaw     string     `json:"mac_raw,omitempty"`

	VLANs     []VLAN `json:"vlans,omitempty"`
	VLANCount *int   `json:"vlan_count,omitempty"`
	VLANRaw   string `json:"vlan_raw,omitempty"`

	ArpEntries []ArpEntry `json:"arp_entries,omitempty"`
	ArpCount   *int       `json:"arp_count,omitempty"`
	ArpRaw     string     `json:"arp_raw,omitempty"`

	Privileged bool      `json:"privileged"`
	PolledAt   time.Time `json:"polled_at"`
}

// Record 单条命令的解析结果，合并进快照时只填充空字段
type Record interface {
	MergeInto(s *Snapshot)
}
