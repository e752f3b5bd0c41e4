package model

import "time"

// KnownDevice 已发现的终端设备，按归一化MAC唯一，只增不删
type KnownDevice struct {
	MAC        string    `json:"mac" gorm:"primaryKey;type:varchar(12)"`
	Host       string    `json:"host" gorm:"type:varchar(255);index"`
	DisplayMAC string    `json:"display_mac" gorm:"type:varchar(32)"`
	Port       string    `json:"port" gorm:"type:varchar(64)"`
	IPAddress  string    `json:"ip_address" gorm:"column:ip_address;type:varchar(64)"`
	VLAN       int       `json:"vlan" gorm:"column:vlan"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

func (KnownDevice) TableName() string {
	return "known_devices"
}
