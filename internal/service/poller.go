package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

// Outbound 对外快照映射：快照字段 + 派生数据
type Outbound struct {
	collect.Snapshot
	PortDevices    PortDeviceMap      `json:"port_devices"`
	PortEnergyKWh  map[string]float64 `json:"port_energy_kwh"`
	PoeEnergyTotal float64            `json:"poe_energy_total"`
}

// PollStatus 轮询状态
type PollStatus struct {
	Running             bool          `json:"running"`
	Host                string        `json:"host"`
	Platform            string        `json:"platform"`
	PollInterval        string        `json:"poll_interval"`
	LastPollID          string        `json:"last_poll_id,omitempty"`
	LastAttempt         *time.Time    `json:"last_attempt,omitempty"`
	LastSuccess         *time.Time    `json:"last_success,omitempty"`
	LastError           string        `json:"last_error,omitempty"`
	ErrorKind           PollErrorKind `json:"error_kind,omitempty"`
	Terminal            bool          `json:"terminal"`
	Stale               bool          `json:"stale"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
}

// SnapshotPublisher 最新快照发布（Redis）
type SnapshotPublisher interface {
	Publish(ctx context.Context, pollID string, payload []byte) error
}

// SnapshotReader 可读回最近一次发布的快照
type SnapshotReader interface {
	Latest(ctx context.Context) ([]byte, error)
}

// PollerService 长期存活的采集协调者：持有能耗账本与已见终端集合
// 所有采集（定时与手动）经 singleflight 串行化，账本只由完成的成功轮次写入
type PollerService struct {
	config     *config.Config
	creds      Credentials
	aggregator *Aggregator
	ledger     *EnergyLedger
	devices    *DeviceRegistry
	history    *HistoryStore
	archive    StorageWriter
	publisher  SnapshotPublisher
	group      singleflight.Group

	mutex    sync.RWMutex
	running  bool
	loopCtx  context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
	resetCh  chan time.Duration
	latest   *Outbound
	status   PollStatus
}

// NewPollerService 创建轮询服务
func NewPollerService(cfg *config.Config) *PollerService {
	s := &PollerService{
		config:     cfg,
		creds:      CredentialsFromConfig(cfg.Switch),
		aggregator: NewAggregator(cfg.Switch),
		ledger:     NewEnergyLedger(),
		devices:    NewDeviceRegistry(),
		history:    NewHistoryStore(cfg.Database.SQLite.HistoryLimit),
		interval:   cfg.Switch.PollInterval,
		resetCh:    make(chan time.Duration, 1),
	}
	if cfg.Archive.Enabled {
		s.archive = NewStorageWriter(cfg)
	}
	s.status.Host = cfg.Switch.Host
	s.status.Platform = s.aggregator.Platform()
	return s
}

// WithPublisher 设置快照发布器
func (s *PollerService) WithPublisher(p SnapshotPublisher) *PollerService {
	s.publisher = p
	return s
}

// WithAggregator 替换聚合器
func (s *PollerService) WithAggregator(a *Aggregator) *PollerService {
	s.aggregator = a
	return s
}

// Ledger 能耗账本
func (s *PollerService) Ledger() *EnergyLedger { return s.ledger }

// Devices 已见终端集合
func (s *PollerService) Devices() *DeviceRegistry { return s.devices }

// History 采集记录
func (s *PollerService) History() *HistoryStore { return s.history }

// Start 恢复持久化状态并启动定时采集
func (s *PollerService) Start(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return fmt.Errorf("poller service is already running")
	}

	if totals, err := s.history.LoadEnergy(s.creds.Host); err != nil {
		logger.WithError(err).Warn("Failed to restore energy ledger")
	} else {
		s.ledger.Restore(totals)
	}
	if devices, err := s.history.LoadDevices(s.creds.Host); err != nil {
		logger.WithError(err).Warn("Failed to restore known devices")
	} else {
		s.devices.Restore(devices)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.loopCtx = loopCtx
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(loopCtx, s.interval, s.done)

	logger.WithFields(logrus.Fields{"host": s.creds.Host, "interval": s.interval.String()}).Info("Poller service started")
	return nil
}

// Stop 停止定时采集并等待进行中的轮次结束
func (s *PollerService) Stop() error {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return nil
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mutex.Unlock()

	cancel()
	<-done
	logger.Info("Poller service stopped")
	return nil
}

// SetPollInterval 热更新采集周期
func (s *PollerService) SetPollInterval(d time.Duration) {
	if d < time.Second {
		return
	}
	s.mutex.Lock()
	changed := d != s.interval
	s.interval = d
	s.mutex.Unlock()
	if !changed {
		return
	}
	select {
	case s.resetCh <- d:
	default:
	}
	logger.WithField("interval", d.String()).Info("Poll interval updated")
}

func (s *PollerService) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 启动后立即采集一次
	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.resetCh:
			ticker.Reset(d)
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *PollerService) tick(ctx context.Context) {
	if _, err := s.PollNow(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Debug("Scheduled poll did not produce a snapshot")
	}
}

// PollNow 立即采集；与进行中的采集合并，返回同一结果
// 采集本身不受调用方取消影响（其他合并进来的调用方仍在等待），ctx 只决定调用方等待多久
func (s *PollerService) PollNow(ctx context.Context) (*Outbound, error) {
	cycleCtx := s.cycleContext(ctx)
	ch := s.group.DoChan("poll", func() (interface{}, error) {
		return s.runCycle(cycleCtx)
	})
	select {
	case <-ctx.Done():
		return nil, &PollError{Kind: KindCancelled, Err: ctx.Err()}
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Outbound), nil
	}
}

// cycleContext 运行中使用轮询循环的上下文（Stop 时取消），否则与调用方的取消解耦
func (s *PollerService) cycleContext(ctx context.Context) context.Context {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.running && s.loopCtx != nil {
		return s.loopCtx
	}
	return context.WithoutCancel(ctx)
}

// runCycle 单轮采集；失败时账本与终端集合保持不变
func (s *PollerService) runCycle(ctx context.Context) (*Outbound, error) {
	pollID := uuid.New().String()
	attempt := time.Now()

	result, err := s.aggregator.PollOnce(ctx, pollID, s.creds)
	if err != nil {
		s.recordFailure(pollID, attempt, err)
		return nil, err
	}

	snap := result.Snapshot
	s.ledger.Integrate(snap, snap.PolledAt)
	portDevices := BuildPortDeviceMap(snap)
	for _, d := range s.devices.Observe(s.creds.Host, portDevices, snap.PolledAt) {
		logger.WithFields(logrus.Fields{"mac": d.DisplayMAC, "port": d.Port, "ip": d.IPAddress}).Info("New device discovered")
	}

	out := &Outbound{
		Snapshot:       *snap,
		PortDevices:    portDevices,
		PortEnergyKWh:  s.ledger.Totals(),
		PoeEnergyTotal: s.ledger.Total(),
	}

	s.mutex.Lock()
	s.latest = out
	now := snap.PolledAt
	s.status.LastPollID = pollID
	s.status.LastAttempt = &attempt
	s.status.LastSuccess = &now
	s.status.LastError = ""
	s.status.ErrorKind = ""
	s.status.Terminal = false
	s.status.ConsecutiveFailures = 0
	s.mutex.Unlock()

	s.persist(ctx, result, out)
	return out, nil
}

func (s *PollerService) recordFailure(pollID string, attempt time.Time, err error) {
	s.mutex.Lock()
	s.status.LastPollID = pollID
	s.status.LastAttempt = &attempt
	s.status.LastError = err.Error()
	s.status.ConsecutiveFailures++
	if pe, ok := AsPollError(err); ok {
		s.status.ErrorKind = pe.Kind
		s.status.Terminal = pe.Terminal()
	}
	s.mutex.Unlock()

	if herr := s.history.SaveFailure(pollID, s.creds.Host, s.aggregator.Platform(), attempt, err); herr != nil {
		logger.WithError(herr).Warn("Failed to save poll record")
	}
}

// persist 写入历史、能耗、终端、归档与发布；任何一步失败只记录日志
func (s *PollerService) persist(ctx context.Context, result *PollResult, out *Outbound) {
	log := logger.WithPoll(s.creds.Host, result.ID)

	payload, err := json.Marshal(out)
	if err != nil {
		log.WithError(err).Warn("Failed to marshal snapshot")
		return
	}

	if err := s.history.SaveSuccess(s.creds.Host, s.aggregator.Platform(), result, payload); err != nil {
		log.WithError(err).Warn("Failed to save poll record")
	}
	if err := s.history.SaveEnergy(s.creds.Host, s.ledger); err != nil {
		log.WithError(err).Warn("Failed to save energy ledger")
	}
	if err := s.history.SaveDevices(s.devices.List()); err != nil {
		log.WithError(err).Warn("Failed to save known devices")
	}

	if s.archive != nil {
		for _, c := range result.Commands {
			meta := StorageMeta{Host: s.creds.Host, PollID: result.ID, PolledAt: result.StartTime, Command: c.Command}
			if _, err := s.archive.Write(ctx, meta, c.Output); err != nil {
				log.WithField("command", c.Command).WithError(err).Warn("Failed to archive raw output")
			}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, result.ID, payload); err != nil {
			log.WithError(err).Warn("Failed to publish snapshot")
		}
	}
}

// Latest 最近一次成功采集的对外映射，尚无成功采集时为 nil
func (s *PollerService) Latest() *Outbound {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.latest
}

// CachedSnapshot 内存中尚无快照时（如重启后）从发布端读回最近一次快照
func (s *PollerService) CachedSnapshot(ctx context.Context) (json.RawMessage, error) {
	r, ok := s.publisher.(SnapshotReader)
	if !ok {
		return nil, ErrNoCachedSnapshot
	}
	data, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoCachedSnapshot
	}
	return json.RawMessage(data), nil
}

// Status 当前轮询状态；最近一次采集失败或成功快照超过两个周期即视为过期
func (s *PollerService) Status() PollStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	st := s.status
	st.Running = s.running
	st.PollInterval = s.interval.String()
	switch {
	case st.LastSuccess == nil:
		st.Stale = true
	case st.ConsecutiveFailures > 0:
		st.Stale = true
	default:
		st.Stale = time.Since(*st.LastSuccess) > 2*s.interval
	}
	return st
}

// TestConnection 连接测试：建连登录后立即关闭；creds 为空时使用配置中的交换机
// 目标不是配置中的交换机时必须自带用户名和密码，配置中的凭据只发往配置的地址
func (s *PollerService) TestConnection(ctx context.Context, creds *Credentials) error {
	c := s.creds
	if creds == nil {
		return s.aggregator.TestConnection(ctx, c)
	}
	retarget := (creds.Host != "" && creds.Host != c.Host) || (creds.Port > 0 && creds.Port != c.Port)
	if retarget {
		if creds.Username == "" || creds.Password == "" {
			return ErrCredentialsRequired
		}
		c.Username, c.Password = "", ""
	}
	if creds.Host != "" {
		c.Host = creds.Host
	}
	if creds.Port > 0 {
		c.Port = creds.Port
	}
	if creds.Username != "" {
		c.Username = creds.Username
	}
	if creds.Password != "" {
		c.Password = creds.Password
	}
	return s.aggregator.TestConnection(ctx, c)
}
