package collect

// VersionInfo display version
type VersionInfo struct {
	Uptime          string
	Model           string
	SoftwareVersion string
	HardwareVersion string
	BootromVersion  string
	Raw             string
}

func (r *VersionInfo) MergeInto(s *Snapshot) {
	setString(&s.Uptime, r.Uptime)
	setString(&s.Model, r.Model)
	setString(&s.SoftwareVersion, r.SoftwareVersion)
	setString(&s.HardwareVersion, r.HardwareVersion)
	setString(&s.BootromVersion, r.BootromVersion)
	setString(&s.VersionRaw, r.Raw)
}

// DeviceInfo display device manuinfo
type DeviceInfo struct {
	DeviceName        string
	SerialNumber      string
	MACAddress        string
	ManufacturingDate string
	VendorName        string
	Raw               string
}

func (r *DeviceInfo) MergeInto(s *Snapshot) {
	setString(&s.DeviceName, r.DeviceName)
	setString(&s.SerialNumber, r.SerialNumber)
	setString(&s.MACAddress, r.MACAddress)
	setString(&s.ManufacturingDate, r.ManufacturingDate)
	setString(&s.VendorName, r.VendorName)
	setString(&s.ManuinfoRaw, r.Raw)
}

// CPUUsage display cpu-usage
type CPUUsage struct {
	Usage   *float64
	Usage1m *float64
	Usage5m *float64
	Raw     string
}

func (r *CPUUsage) MergeInto(s *Snapshot) {
	setPtr(&s.CPUUsage, r.Usage)
	setPtr(&s.CPUUsage1m, r.Usage1m)
	setPtr(&s.CPUUsage5m, r.Usage5m)
	setString(&s.CPURaw, r.Raw)
}

// MemoryUsage display memory（字节）
type MemoryUsage struct {
	Total        *int64
	Used         *int64
	Free         *int64
	UsagePercent *float64
	Raw          string
}

func (r *MemoryUsage) MergeInto(s *Snapshot) {
	setPtr(&s.MemoryTotal, r.Total)
	setPtr(&s.MemoryUsed, r.Used)
	setPtr(&s.MemoryFree, r.Free)
	setPtr(&s.MemoryUsagePercent, r.UsagePercent)
	setString(&s.MemoryRaw, r.Raw)
}

// InterfaceTable display interface brief
type InterfaceTable struct {
	Ports     []Port
	PortsUp   int
	PortsDown int
	Raw       string
}

func (r *InterfaceTable) MergeInto(s *Snapshot) {
	if s.PortCount != nil {
		return
	}
	s.Ports = r.Ports
	s.PortCount = intPtr(len(r.Ports))
	s.PortsUp = intPtr(r.PortsUp)
	s.PortsDown = intPtr(r.PortsDown)
	setString(&s.InterfaceRaw, r.Raw)
}

// PoeInterfaceTable display poe interface
type PoeInterfaceTable struct {
	Ports   []PoePort
	PortsOn int
	Raw     string
}

func (r *PoeInterfaceTable) MergeInto(s *Snapshot) {
	if s.PoePortsOn != nil {
		return
	}
	s.PoePorts = r.Ports
	s.PoePortsOn = intPtr(r.PortsOn)
	setString(&s.PoeInterfaceRaw, r.Raw)
}

// PoePower PSE 总功率（瓦）
type PoePower struct {
	Total     *float64
	Used      *float64
	Remaining *float64
	Peak      *float64
	Raw       string
}

func (r *PoePower) MergeInto(s *Snapshot) {
	setPtr(&s.PoePowerTotal, r.Total)
	setPtr(&s.PoePowerUsed, r.Used)
	setPtr(&s.PoePowerRemaining, r.Remaining)
	setPtr(&s.PoePeakPower, r.Peak)
	setString(&s.PoePowerRaw, r.Raw)
}

// FanTable display fan
type FanTable struct {
	Fans []Fan
	Raw  string
}

func (r *FanTable) MergeInto(s *Snapshot) {
	if s.Fans == nil {
		s.Fans = r.Fans
	}
	setString(&s.FanRaw, r.Raw)
}

// EnvironmentInfo display environment
type EnvironmentInfo struct {
	Temperatures []TemperatureSensor
	Temperature  *float64
	Raw          string
}

func (r *EnvironmentInfo) MergeInto(s *Snapshot) {
	if s.Temperatures == nil {
		s.Temperatures = r.Temperatures
	}
	setPtr(&s.Temperature, r.Temperature)
	setString(&s.EnvironmentRaw, r.Raw)
}

// NeighborTable display lldp neighbor-information brief
type NeighborTable struct {
	Neighbors []LLDPNeighbor
	Raw       string
}

func (r *NeighborTable) MergeInto(s *Snapshot) {
	if s.Neighbors == nil {
		s.Neighbors = r.Neighbors
	}
	setString(&s.LLDPRaw, r.Raw)
}

// MacTable display mac-address
type MacTable struct {
	Entries []MacEntry
	Count   int
	Raw     string
}

func (r *MacTable) MergeInto(s *Snapshot) {
	if s.MacCount != nil {
		return
	}
	s.MacEntries = r.Entries
	s.MacCount = intPtr(r.Count)
	setString(&s.MacRaw, r.Raw)
}

// VLANTable display vlan all
type VLANTable struct {
	VLANs []VLAN
	Count int
	Raw   string
}

func (r *VLANTable) MergeInto(s *Snapshot) {
	if s.VLANCount != nil {
		return
	}
	s.VLANs = r.VLANs
	s.VLANCount = intPtr(r.Count)
	setString(&s.VLANRaw, r.Raw)
}

// ArpTable display arp
type ArpTable struct {
	Entries []ArpEntry
	Count   int
	Raw     string
}

func (r *ArpTable) MergeInto(s *Snapshot) {
	if s.ArpCount != nil {
		return
	}
	s.ArpEntries = r.Entries
	s.ArpCount = intPtr(r.Count)
	setString(&s.ArpRaw, r.Raw)
}

func setString(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func setPtr[T any](dst **T, v *T) {
	if *dst == nil && v != nil {
		*dst = v
	}
}

func intPtr(v int) *int { return &v }
