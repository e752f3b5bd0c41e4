package service

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/switchcollectorpro/switchcollectorpro/internal/database"
	"github.com/switchcollectorpro/switchcollectorpro/internal/model"
)

const (
	retryAttempts = 5
	retrySleep    = 50 * time.Millisecond
)

// HistoryStore 采集记录、能耗账本与终端集合的 SQLite 持久化；数据库未初始化时各操作为空操作
type HistoryStore struct {
	limit int
}

// NewHistoryStore limit 为保留的记录条数，0 表示不清理
func NewHistoryStore(limit int) *HistoryStore {
	return &HistoryStore{limit: limit}
}

func (h *HistoryStore) enabled() bool {
	return database.GetDB() != nil
}

// SaveSuccess 保存成功的采集记录（含快照 JSON）
func (h *HistoryStore) SaveSuccess(host, platform string, result *PollResult, payload []byte) error {
	if !h.enabled() {
		return nil
	}
	snap := result.Snapshot
	rec := &model.PollRecord{
		ID:             result.ID,
		Host:           host,
		Platform:       platform,
		Status:         model.PollStatusSuccess,
		Privileged:     snap.Privileged,
		Commands:       len(result.Commands),
		FailedCommands: len(result.FailedCommands()),
		PortsUp:        derefInt(snap.PortsUp),
		PortsDown:      derefInt(snap.PortsDown),
		MacCount:       derefInt(snap.MacCount),
		ArpCount:       derefInt(snap.ArpCount),
		Snapshot:       string(payload),
		StartTime:      result.StartTime,
		EndTime:        result.EndTime,
		Duration:       result.EndTime.Sub(result.StartTime).Milliseconds(),
	}
	if snap.PoePowerUsed != nil {
		rec.PoePowerUsed = *snap.PoePowerUsed
	}
	return h.save(rec)
}

// SaveFailure 保存失败的采集记录
func (h *HistoryStore) SaveFailure(pollID, host, platform string, start time.Time, err error) error {
	if !h.enabled() {
		return nil
	}
	end := time.Now()
	rec := &model.PollRecord{
		ID:        pollID,
		Host:      host,
		Platform:  platform,
		Status:    model.PollStatusFailed,
		ErrorMsg:  err.Error(),
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).Milliseconds(),
	}
	if pe, ok := AsPollError(err); ok {
		rec.ErrorKind = string(pe.Kind)
	}
	return h.save(rec)
}

func (h *HistoryStore) save(rec *model.PollRecord) error {
	if err := database.WithRetry(func(db *gorm.DB) error {
		return db.Create(rec).Error
	}, retryAttempts, retrySleep); err != nil {
		return err
	}
	return h.prune()
}

// prune 只保留最近 limit 条记录
func (h *HistoryStore) prune() error {
	if h.limit <= 0 {
		return nil
	}
	return database.WithRetry(func(db *gorm.DB) error {
		keep := db.Model(&model.PollRecord{}).Select("id").Order("created_at DESC").Limit(h.limit)
		return db.Where("id NOT IN (?)", keep).Delete(&model.PollRecord{}).Error
	}, retryAttempts, retrySleep)
}

// Recent 最近的采集记录，按创建时间倒序
func (h *HistoryStore) Recent(limit int) ([]model.PollRecord, error) {
	if !h.enabled() {
		return []model.PollRecord{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var records []model.PollRecord
	err := database.GetDB().Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// Get 按 ID 查询单条记录（含快照 JSON）
func (h *HistoryStore) Get(id string) (*model.PollRecord, error) {
	if !h.enabled() {
		return nil, gorm.ErrRecordNotFound
	}
	var rec model.PollRecord
	if err := database.GetDB().Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveEnergy 覆盖写入账本累计值与最近采样
func (h *HistoryStore) SaveEnergy(host string, ledger *EnergyLedger) error {
	if !h.enabled() {
		return nil
	}
	totals := ledger.Totals()
	if len(totals) == 0 {
		return nil
	}
	rows := make([]model.PortEnergy, 0, len(totals))
	for port, kwh := range totals {
		row := model.PortEnergy{Host: host, Port: port, TotalKWh: kwh}
		if w, at, ok := ledger.LastWatts(port); ok {
			row.LastWatts = w
			row.SampledAt = at
		}
		rows = append(rows, row)
	}
	return database.WithRetry(func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "host"}, {Name: "port"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_kwh", "last_watts", "sampled_at", "updated_at"}),
		}).Create(&rows).Error
	}, retryAttempts, retrySleep)
}

// LoadEnergy 读取某交换机的端口累计能耗
func (h *HistoryStore) LoadEnergy(host string) (map[string]float64, error) {
	out := map[string]float64{}
	if !h.enabled() {
		return out, nil
	}
	var rows []model.PortEnergy
	if err := database.GetDB().Where("host = ?", host).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.Port] = r.TotalKWh
	}
	return out, nil
}

// SaveDevices 写入终端集合（存在则更新位置信息）
func (h *HistoryStore) SaveDevices(devices []model.KnownDevice) error {
	if !h.enabled() || len(devices) == 0 {
		return nil
	}
	return database.WithRetry(func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mac"}},
			DoUpdates: clause.AssignmentColumns([]string{"port", "ip_address", "vlan", "last_seen"}),
		}).Create(&devices).Error
	}, retryAttempts, retrySleep)
}

// LoadDevices 读取某交换机下的已知终端
func (h *HistoryStore) LoadDevices(host string) ([]model.KnownDevice, error) {
	if !h.enabled() {
		return nil, nil
	}
	var devices []model.KnownDevice
	err := database.GetDB().Where("host = ?", host).Order("first_seen").Find(&devices).Error
	return devices, err
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
