package model

import "time"

// PortEnergy 端口累计能耗（kWh），每轮成功采集后覆盖写入
// 重启后仅恢复累计值，首个样本不计能耗
type PortEnergy struct {
	Host      string    `json:"host" gorm:"primaryKey;type:varchar(255)"`
	Port      string    `json:"port" gorm:"primaryKey;type:varchar(64)"`
	TotalKWh  float64   `json:"total_kwh" gorm:"column:total_kwh;not null;default:0"`
	LastWatts float64   `json:"last_watts"`
	SampledAt time.Time `json:"sampled_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PortEnergy) TableName() string {
	return "port_energy"
}
