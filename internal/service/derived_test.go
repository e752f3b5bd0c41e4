package service

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
	"github.com/switchcollectorpro/switchcollectorpro/internal/model"
)

func TestNormalizeMAC(t *testing.T) {
	for _, in := range []string{"0011-2233-4455", "00:11:22:33:44:55", "0011.2233.4455", "00-11-22-33-44-55", "0011-2233-4455 "} {
		assert.Equal(t, "001122334455", NormalizeMAC(in), in)
	}
	assert.Equal(t, "aabbccddeeff", NormalizeMAC("AABB-CCDD-EEFF"))
	assert.Equal(t, "", NormalizeMAC(""))
}

func TestNormalizePortName(t *testing.T) {
	cases := map[string]string{
		"GigabitEthernet1/0/1":      "GE1/0/1",
		"Ten-GigabitEthernet1/0/25": "XGE1/0/25",
		"Bridge-Aggregation1":       "BAGG1",
		"gigabitethernet1/0/2":      "GE1/0/2",
		"GE1/0/3":                   "GE1/0/3",
		"Vlan-interface1":           "Vlan-interface1",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePortName(in), in)
	}
}

func TestBuildPortDeviceMap(t *testing.T) {
	snap := &collect.Snapshot{
		MacEntries: []collect.MacEntry{
			{MACAddress: "0011-2233-4455", VLAN: 1, State: "Learned", Port: "GigabitEthernet1/0/1"},
			{MACAddress: "0011-2233-4466", VLAN: 20, State: "Learned", Port: "GigabitEthernet1/0/1"},
			{MACAddress: "000f-e212-3456", VLAN: 1, State: "Config static", Port: "GigabitEthernet1/0/2"},
		},
		ArpEntries: []collect.ArpEntry{
			{IPAddress: "192.168.1.10", MACAddress: "00:11:22:33:44:55"},
			{IPAddress: "192.168.1.20", MACAddress: "0011.2233.4466"},
		},
	}

	m := BuildPortDeviceMap(snap)
	require.Len(t, m, 2)
	require.Len(t, m["GE1/0/1"], 2)
	assert.Equal(t, PortDevice{MACAddress: "0011-2233-4455", IPAddress: "192.168.1.10", VLAN: 1, State: "Learned"}, m["GE1/0/1"][0])
	assert.Equal(t, "192.168.1.20", m["GE1/0/1"][1].IPAddress, "分隔符不同也能匹配")
	require.Len(t, m["GE1/0/2"], 1)
	assert.Equal(t, "", m["GE1/0/2"][0].IPAddress, "无 ARP 记录时 IP 为空")
	assert.Equal(t, "000f-e212-3456", m["GE1/0/2"][0].MACAddress, "保留原始格式")

	assert.Empty(t, BuildPortDeviceMap(nil))
}

func poeSnapshot(ports map[string]float64) *collect.Snapshot {
	snap := &collect.Snapshot{}
	for name, w := range ports {
		snap.PoePorts = append(snap.PoePorts, collect.PoePort{Name: name, PowerWatts: w})
	}
	return snap
}

func TestIntegrateEnergyTrapezoid(t *testing.T) {
	l := NewEnergyLedger()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d := l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 4.0}), t0)
	assert.Empty(t, d, "首次采样不计能耗")
	assert.Equal(t, 0.0, l.Totals()["GE1/0/1"])

	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 6.0}), t0.Add(30*time.Second))
	want := ((4.0 + 6.0) / 2) * (30.0 / 3600) / 1000
	assert.InDelta(t, want, l.Totals()["GE1/0/1"], 1e-15)
	assert.InDelta(t, 4.1666e-5, l.Total(), 1e-8)
}

func TestIntegrateEnergyFrozenAndClockSkew(t *testing.T) {
	l := NewEnergyLedger()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 10, "GE1/0/2": 5}), t0)
	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 10, "GE1/0/2": 5}), t0.Add(time.Hour))
	before := l.Totals()
	assert.InDelta(t, 0.01, before["GE1/0/1"], 1e-12)

	// GE1/0/2 消失：累计值冻结
	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 10}), t0.Add(2*time.Hour))
	after := l.Totals()
	assert.Equal(t, before["GE1/0/2"], after["GE1/0/2"])

	// 时间倒退不累计
	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 10}), t0.Add(time.Hour))
	assert.Equal(t, after["GE1/0/1"], l.Totals()["GE1/0/1"])
}

func TestIntegrateEnergyMonotonicAndOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"GE1/0/1", "GE1/0/2", "GE1/0/3", "GE1/0/4", "GE1/0/5"}
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a, b := NewEnergyLedger(), NewEnergyLedger()
	now := t0
	for cycle := 0; cycle < 20; cycle++ {
		snap := &collect.Snapshot{}
		for _, n := range names {
			snap.PoePorts = append(snap.PoePorts, collect.PoePort{Name: n, PowerWatts: rng.Float64() * 30})
		}
		shuffled := &collect.Snapshot{PoePorts: append([]collect.PoePort{}, snap.PoePorts...)}
		rng.Shuffle(len(shuffled.PoePorts), func(i, j int) {
			shuffled.PoePorts[i], shuffled.PoePorts[j] = shuffled.PoePorts[j], shuffled.PoePorts[i]
		})

		prev := a.Totals()
		a.Integrate(snap, now)
		b.Integrate(shuffled, now)
		for port, v := range a.Totals() {
			assert.GreaterOrEqual(t, v, prev[port], "累计值不减")
		}
		now = now.Add(time.Duration(25+rng.Intn(10)) * time.Second)
	}
	ta, tb := a.Totals(), b.Totals()
	for port := range ta {
		assert.True(t, math.Abs(ta[port]-tb[port]) < 1e-15, port)
	}
}

func TestEnergyLedgerRestore(t *testing.T) {
	l := NewEnergyLedger()
	l.Restore(map[string]float64{"GE1/0/1": 1.5})
	t0 := time.Now()
	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 100}), t0)
	assert.Equal(t, 1.5, l.Totals()["GE1/0/1"], "重启后首个样本不计能耗")
	l.Integrate(poeSnapshot(map[string]float64{"GE1/0/1": 100}), t0.Add(time.Hour))
	assert.InDelta(t, 1.6, l.Totals()["GE1/0/1"], 1e-12)
}

func TestDeviceRegistryAppendOnly(t *testing.T) {
	r := NewDeviceRegistry()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	added := r.Observe("10.0.0.1", PortDeviceMap{
		"GE1/0/1": {{MACAddress: "0011-2233-4455", IPAddress: "192.168.1.10", VLAN: 1}},
	}, t0)
	require.Len(t, added, 1)
	assert.Equal(t, "001122334455", added[0].MAC)
	assert.True(t, r.Has("00:11:22:33:44:55"))

	// 同一终端换端口：不重复新增，刷新位置
	added = r.Observe("10.0.0.1", PortDeviceMap{
		"GE1/0/4": {{MACAddress: "00:11:22:33:44:55", VLAN: 20}},
		"GE1/0/2": {{MACAddress: "000f-e212-3456", VLAN: 1}},
	}, t0.Add(time.Minute))
	require.Len(t, added, 1)
	assert.Equal(t, "000fe2123456", added[0].MAC)

	// 本轮未出现的终端仍保留
	r.Observe("10.0.0.1", PortDeviceMap{}, t0.Add(2*time.Minute))
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "GE1/0/4", list[0].Port)
	assert.Equal(t, "192.168.1.10", list[0].IPAddress, "空 IP 不覆盖已知 IP")
	assert.Equal(t, t0.Add(time.Minute), list[0].LastSeen)

	r.Restore([]model.KnownDevice{{MAC: "AA-BB-CC-DD-EE-FF", FirstSeen: t0.Add(-time.Hour)}})
	assert.Len(t, r.List(), 3)
	assert.Equal(t, "aabbccddeeff", r.List()[0].MAC)
}
