package model

import (
	"time"
)

// PollRecord 单轮采集记录
type PollRecord struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Host           string    `json:"host" gorm:"type:varchar(255);not null;index"`
	Platform       string    `json:"platform" gorm:"type:varchar(32);not null"`
	Status         string    `json:"status" gorm:"type:varchar(16);not null;index"`
	ErrorKind      string    `json:"error_kind" gorm:"type:varchar(32)"`
	ErrorMsg       string    `json:"error_msg" gorm:"type:text"`
	Privileged     bool      `json:"privileged"`
	Commands       int       `json:"commands"`
	FailedCommands int       `json:"failed_commands"`
	PortsUp        int       `json:"ports_up"`
	PortsDown      int       `json:"ports_down"`
	MacCount       int       `json:"mac_count"`
	ArpCount       int       `json:"arp_count"`
	PoePowerUsed   float64   `json:"poe_power_used"`
	Snapshot       string    `json:"-" gorm:"type:text"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       int64     `json:"duration"` // 执行时长，毫秒
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 表名
func (PollRecord) TableName() string {
	return "poll_records"
}

// PollStatus 采集状态枚举
const (
	PollStatusSuccess = "success"
	PollStatusFailed  = "failed"
)
