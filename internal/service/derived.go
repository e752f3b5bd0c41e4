package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
	"github.com/switchcollectorpro/switchcollectorpro/internal/model"
)

// PortDevice 端口下学习到的终端
type PortDevice struct {
	MACAddress string `json:"mac_address"`
	IPAddress  string `json:"ip_address"`
	VLAN       int    `json:"vlan"`
	State      string `json:"state"`
}

// PortDeviceMap 端口短名 -> 终端列表（保持 MAC 表顺序）
type PortDeviceMap map[string][]PortDevice

// 长接口名到短别名，按前缀匹配，顺序即优先级
var portAliases = []struct{ long, short string }{
	{"Ten-GigabitEthernet", "XGE"},
	{"GigabitEthernet", "GE"},
	{"Bridge-Aggregation", "BAGG"},
}

// NormalizePortName 将已知长接口名改写为短别名，其余保持不变
func NormalizePortName(name string) string {
	name = strings.TrimSpace(name)
	for _, a := range portAliases {
		if len(name) > len(a.long) && strings.EqualFold(name[:len(a.long)], a.long) {
			return a.short + name[len(a.long):]
		}
	}
	return name
}

// NormalizeMAC 用于比对的 MAC：小写并去掉 '-'、':'、'.'
func NormalizeMAC(mac string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ':', '.', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(mac)))
}

// BuildPortDeviceMap 以 ARP 表补全 MAC 表中每个终端的 IP，并按端口归组
func BuildPortDeviceMap(snap *collect.Snapshot) PortDeviceMap {
	out := PortDeviceMap{}
	if snap == nil {
		return out
	}
	ipByMAC := make(map[string]string, len(snap.ArpEntries))
	for _, a := range snap.ArpEntries {
		key := NormalizeMAC(a.MACAddress)
		if key == "" {
			continue
		}
		// 同一 MAC 多条 ARP 时保留首条
		if _, ok := ipByMAC[key]; !ok {
			ipByMAC[key] = a.IPAddress
		}
	}
	for _, m := range snap.MacEntries {
		port := NormalizePortName(m.Port)
		if port == "" {
			continue
		}
		out[port] = append(out[port], PortDevice{
			MACAddress: m.MACAddress,
			IPAddress:  ipByMAC[NormalizeMAC(m.MACAddress)],
			VLAN:       m.VLAN,
			State:      m.State,
		})
	}
	return out
}

type energySample struct {
	watts float64
	at    time.Time
}

// EnergyLedger 跨轮次的端口累计能耗（kWh），梯形积分
// 由长期存活的轮询服务持有，只有成功的采集轮次才写入
type EnergyLedger struct {
	mutex  sync.Mutex
	totals map[string]float64
	last   map[string]energySample
}

// NewEnergyLedger 创建空账本
func NewEnergyLedger() *EnergyLedger {
	return &EnergyLedger{
		totals: make(map[string]float64),
		last:   make(map[string]energySample),
	}
}

// Integrate 以快照中的 PoE 端口功率更新账本，返回本轮各端口增量
// 首次出现的端口只记录采样点；时间倒退时不累计；快照中消失的端口保持原值
func (l *EnergyLedger) Integrate(snap *collect.Snapshot, now time.Time) map[string]float64 {
	deltas := make(map[string]float64)
	if snap == nil {
		return deltas
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for _, p := range snap.PoePorts {
		port := NormalizePortName(p.Name)
		if port == "" || p.PowerWatts < 0 {
			continue
		}
		if _, ok := l.totals[port]; !ok {
			l.totals[port] = 0
		}
		if prev, ok := l.last[port]; ok {
			if dt := now.Sub(prev.at); dt > 0 {
				hours := dt.Hours()
				avgWatts := (prev.watts + p.PowerWatts) / 2
				kwh := avgWatts * hours / 1000
				l.totals[port] += kwh
				deltas[port] = kwh
			}
		}
		l.last[port] = energySample{watts: p.PowerWatts, at: now}
	}
	return deltas
}

// Totals 账本副本
func (l *EnergyLedger) Totals() map[string]float64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	out := make(map[string]float64, len(l.totals))
	for k, v := range l.totals {
		out[k] = v
	}
	return out
}

// Total 所有端口累计能耗之和
func (l *EnergyLedger) Total() float64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	var sum float64
	for _, v := range l.totals {
		sum += v
	}
	return sum
}

// LastWatts 端口最近一次采样功率
func (l *EnergyLedger) LastWatts(port string) (float64, time.Time, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	s, ok := l.last[port]
	return s.watts, s.at, ok
}

// Restore 从持久化数据恢复累计值；采样点不恢复，重启后首轮不计能耗
func (l *EnergyLedger) Restore(totals map[string]float64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	for k, v := range totals {
		if v > l.totals[k] {
			l.totals[k] = v
		}
	}
}

// DeviceRegistry 已见终端集合，按规范化 MAC 只增不减
type DeviceRegistry struct {
	mutex sync.RWMutex
	seen  map[string]*model.KnownDevice
}

// NewDeviceRegistry 创建空集合
func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{seen: make(map[string]*model.KnownDevice)}
}

// Observe 记录本轮端口终端，返回首次出现的终端；已知终端刷新位置与最后出现时间
func (r *DeviceRegistry) Observe(host string, devices PortDeviceMap, now time.Time) []model.KnownDevice {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ports := make([]string, 0, len(devices))
	for p := range devices {
		ports = append(ports, p)
	}
	sort.Strings(ports)

	var added []model.KnownDevice
	for _, port := range ports {
		for _, d := range devices[port] {
			key := NormalizeMAC(d.MACAddress)
			if key == "" {
				continue
			}
			if kd, ok := r.seen[key]; ok {
				kd.Port = port
				kd.VLAN = d.VLAN
				kd.LastSeen = now
				if d.IPAddress != "" {
					kd.IPAddress = d.IPAddress
				}
				continue
			}
			kd := &model.KnownDevice{
				MAC:        key,
				Host:       host,
				DisplayMAC: d.MACAddress,
				Port:       port,
				IPAddress:  d.IPAddress,
				VLAN:       d.VLAN,
				FirstSeen:  now,
				LastSeen:   now,
			}
			r.seen[key] = kd
			added = append(added, *kd)
		}
	}
	return added
}

// Has 是否已见过该 MAC（任意分隔格式）
func (r *DeviceRegistry) Has(mac string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.seen[NormalizeMAC(mac)]
	return ok
}

// List 按首次出现时间排序的副本
func (r *DeviceRegistry) List() []model.KnownDevice {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]model.KnownDevice, 0, len(r.seen))
	for _, kd := range r.seen {
		out = append(out, *kd)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].MAC < out[j].MAC
	})
	return out
}

// Restore 载入持久化的终端集合
func (r *DeviceRegistry) Restore(devices []model.KnownDevice) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for i := range devices {
		d := devices[i]
		d.MAC = NormalizeMAC(d.MAC)
		if d.MAC == "" {
			continue
		}
		if _, ok := r.seen[d.MAC]; !ok {
			r.seen[d.MAC] = &d
		}
	}
}
