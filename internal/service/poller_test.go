package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/internal/database"
	"github.com/switchcollectorpro/switchcollectorpro/internal/model"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/cache"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/telnet"
	"github.com/switchcollectorpro/switchcollectorpro/simulate"
)

type recordingPublisher struct {
	ids      []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, pollID string, payload []byte) error {
	p.ids = append(p.ids, pollID)
	p.payloads = append(p.payloads, payload)
	return nil
}

// readablePublisher 可读回最后一次发布内容，对应 Redis 中的最新快照键
type readablePublisher struct {
	recordingPublisher
}

func (p *readablePublisher) Latest(ctx context.Context) ([]byte, error) {
	if len(p.payloads) == 0 {
		return nil, cache.ErrNotFound
	}
	return p.payloads[len(p.payloads)-1], nil
}

func testConfig(srv *simulate.Server) *config.Config {
	return &config.Config{Switch: switchConfig(srv)}
}

func TestPollerFailedCycleLeavesLedgerUntouched(t *testing.T) {
	srv := startSwitch(t, nil)
	p := NewPollerService(testConfig(srv))
	ctx := context.Background()

	_, err := p.PollNow(ctx)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = p.PollNow(ctx)
	require.NoError(t, err)

	before := p.Ledger().Totals()
	require.Greater(t, before["GE1/0/1"], 0.0)
	watts, at, ok := p.Ledger().LastWatts("GE1/0/1")
	require.True(t, ok)
	latest := p.Latest()

	srv.Stop()
	_, err = p.PollNow(ctx)
	pe, ok := AsPollError(err)
	require.True(t, ok)
	assert.Equal(t, KindConnectionFailed, pe.Kind)

	assert.Equal(t, before, p.Ledger().Totals())
	w2, at2, _ := p.Ledger().LastWatts("GE1/0/1")
	assert.Equal(t, watts, w2)
	assert.Equal(t, at, at2)
	assert.Same(t, latest, p.Latest(), "失败轮次不替换最近快照")

	st := p.Status()
	assert.True(t, st.Terminal)
	assert.True(t, st.Stale)
	assert.Equal(t, KindConnectionFailed, st.ErrorKind)
	assert.Equal(t, 1, st.ConsecutiveFailures)
	assert.NotNil(t, st.LastSuccess)
}

func TestPollerOutboundMapping(t *testing.T) {
	srv := startSwitch(t, nil)
	pub := &recordingPublisher{}
	p := NewPollerService(testConfig(srv)).WithPublisher(pub)

	out, err := p.PollNow(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.payloads, 1)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.payloads[0], &m))
	for _, key := range []string{"model", "cpu_usage", "ports", "mac_entries", "arp_entries", "privileged", "polled_at", "port_devices", "port_energy_kwh", "poe_energy_total"} {
		assert.Contains(t, m, key)
	}

	devices := out.PortDevices["GE1/0/1"]
	require.Len(t, devices, 1)
	assert.Equal(t, "192.168.1.10", devices[0].IPAddress)
	assert.Equal(t, "", out.PortDevices["GE1/0/2"][0].IPAddress)
	assert.Contains(t, out.PortEnergyKWh, "GE1/0/4")
	assert.Equal(t, 0.0, out.PoeEnergyTotal, "首轮不计能耗")
	assert.Len(t, p.Devices().List(), 3)

	st := p.Status()
	assert.False(t, st.Stale)
	assert.False(t, st.Terminal)
	assert.Equal(t, pub.ids[0], st.LastPollID)

	_, err = p.CachedSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoCachedSnapshot, "发布端不可读时无缓存快照")
}

func TestPollerCachedSnapshotAfterRestart(t *testing.T) {
	srv := startSwitch(t, nil)
	pub := &readablePublisher{}
	ctx := context.Background()

	p2 := NewPollerService(testConfig(srv)).WithPublisher(pub)
	_, err := p2.CachedSnapshot(ctx)
	assert.ErrorIs(t, err, cache.ErrNotFound)

	p1 := NewPollerService(testConfig(srv)).WithPublisher(pub)
	out, err := p1.PollNow(ctx)
	require.NoError(t, err)

	assert.Nil(t, p2.Latest())
	raw, err := p2.CachedSnapshot(ctx)
	require.NoError(t, err)
	var cached map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, out.Model, cached["model"])
	assert.Contains(t, cached, "port_devices")
}

func TestPollerPersistence(t *testing.T) {
	require.NoError(t, database.InitSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "poll.db")}))
	t.Cleanup(func() { database.Close() })

	srv := startSwitch(t, nil)
	cfg := testConfig(srv)
	cfg.Database.SQLite.HistoryLimit = 2
	archiveDir := t.TempDir()
	cfg.Archive = config.ArchiveConfig{Enabled: true, Backend: "local", BaseDir: archiveDir, Prefix: "polls"}
	p := NewPollerService(cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := p.PollNow(ctx)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	records, err := p.History().Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2, "只保留最近 history_limit 条")
	assert.Equal(t, model.PollStatusSuccess, records[0].Status)
	assert.Equal(t, 3, records[0].MacCount)
	assert.Equal(t, 2, records[0].PortsUp)
	assert.True(t, records[0].Privileged)

	rec, err := p.History().Get(records[0].ID)
	require.NoError(t, err)
	assert.Contains(t, rec.Snapshot, "port_energy_kwh")

	energy, err := p.History().LoadEnergy(cfg.Switch.Host)
	require.NoError(t, err)
	assert.Greater(t, energy["GE1/0/1"], 0.0)

	devices, err := p.History().LoadDevices(cfg.Switch.Host)
	require.NoError(t, err)
	assert.Len(t, devices, 3)

	files, err := filepath.Glob(filepath.Join(archiveDir, "polls", "*", "*", "*.txt"))
	require.NoError(t, err)
	assert.Len(t, files, 39)
	data, err := os.ReadFile(filepath.Join(filepath.Dir(files[0]), "display_version.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Comware")

	// 新实例启动时恢复账本与终端集合
	srv.Stop()
	p2 := NewPollerService(cfg)
	require.NoError(t, p2.Start(ctx))
	require.Eventually(t, func() bool { return p2.Status().LastAttempt != nil }, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, p2.Stop())
	restored := p2.Ledger().Totals()["GE1/0/1"]
	assert.Greater(t, restored, 0.0, "重启后累计能耗从数据库恢复")
	assert.Equal(t, energy["GE1/0/1"], restored)
	assert.Len(t, p2.Devices().List(), 3)

	records, err = p2.History().Recent(10)
	require.NoError(t, err)
	assert.Equal(t, model.PollStatusFailed, records[0].Status)
	assert.Equal(t, string(KindConnectionFailed), records[0].ErrorKind)
}

func TestPollerStartStopAndInterval(t *testing.T) {
	srv := startSwitch(t, nil)
	p := NewPollerService(testConfig(srv))

	require.NoError(t, p.Start(context.Background()))
	assert.Error(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return p.Latest() != nil }, 5*time.Second, 20*time.Millisecond)

	p.SetPollInterval(time.Minute)
	assert.Equal(t, "1m0s", p.Status().PollInterval)
	assert.True(t, p.Status().Running)

	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
	assert.False(t, p.Status().Running)
}

func TestPollerTestConnection(t *testing.T) {
	srv := startSwitch(t, nil)
	p := NewPollerService(testConfig(srv))

	assert.NoError(t, p.TestConnection(context.Background(), nil))
	err := p.TestConnection(context.Background(), &Credentials{Password: "wrong"})
	pe, ok := AsPollError(err)
	require.True(t, ok)
	assert.Equal(t, KindAuthenticationFailed, pe.Kind)
}

// loginCapture 记录拨号目标与登录时写入的内容，给出登录与密码提示后不再应答
type loginCapture struct {
	mu      sync.Mutex
	hosts   []string
	writes  []string
	prompts []string
}

func (l *loginCapture) dial(ctx context.Context, host string, port int, timeout time.Duration) (telnet.Transport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts = append(l.hosts, host)
	l.prompts = []string{"Username:", "Password:"}
	return l, nil
}

func (l *loginCapture) ReadUntil(delims []string, timeout time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return "", &telnet.TimeoutError{Delims: delims}
	}
	p := l.prompts[0]
	l.prompts = l.prompts[1:]
	return p, nil
}

func (l *loginCapture) Write(b []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes = append(l.writes, string(b))
	return nil
}

func (l *loginCapture) Close() error { return nil }

func TestPollerTestConnectionOtherHostNeedsCredentials(t *testing.T) {
	cfg := &config.Config{Switch: config.SwitchConfig{
		Host:     "192.0.2.10",
		Port:     23,
		Username: "admin",
		Password: "s3cret",
		Timeout:  time.Second,
		Platform: "hp_v1910",
	}}
	capture := &loginCapture{}
	p := NewPollerService(cfg).WithAggregator(NewAggregator(cfg.Switch).WithDialer(capture.dial))
	ctx := context.Background()

	err := p.TestConnection(ctx, &Credentials{Host: "attacker.example"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	err = p.TestConnection(ctx, &Credentials{Port: 2323, Password: "x"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	assert.Empty(t, capture.hosts, "未提供凭据时不得连接其他地址")

	err = p.TestConnection(ctx, &Credentials{Host: "198.51.100.7", Username: "ops", Password: "pw"})
	pe, ok := AsPollError(err)
	require.True(t, ok)
	assert.Equal(t, KindAuthenticationFailed, pe.Kind)
	require.NotEmpty(t, capture.hosts)
	assert.Equal(t, "198.51.100.7", capture.hosts[0])
	assert.Contains(t, capture.writes, "ops\n")
	assert.Contains(t, capture.writes, "pw\n")
	assert.NotContains(t, capture.writes, "s3cret\n", "配置中的密码只发往配置的交换机")

	// 同一地址只覆盖密码时沿用配置中的用户名
	capture.writes = nil
	_ = p.TestConnection(ctx, &Credentials{Host: "192.0.2.10", Password: "other"})
	assert.Contains(t, capture.writes, "admin\n")
	assert.Contains(t, capture.writes, "other\n")
}

func TestPollerJoinedPollSurvivesCallerCancel(t *testing.T) {
	srv := startSwitch(t, nil)
	cfg := testConfig(srv)
	slowDial := func(ctx context.Context, host string, port int, timeout time.Duration) (telnet.Transport, error) {
		time.Sleep(150 * time.Millisecond)
		return telnet.Dial(ctx, host, port, timeout)
	}
	p := NewPollerService(cfg).WithAggregator(NewAggregator(cfg.Switch).WithDialer(slowDial))

	reqCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := p.PollNow(reqCtx)
		first <- err
	}()
	time.Sleep(30 * time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := p.PollNow(context.Background())
		second <- err
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	err := <-first
	pe, ok := AsPollError(err)
	require.True(t, ok)
	assert.Equal(t, KindCancelled, pe.Kind)

	require.NoError(t, <-second, "调用方断开不应影响合并进来的采集")
	assert.NotNil(t, p.Latest())
	assert.Equal(t, 0, p.Status().ConsecutiveFailures)
}
