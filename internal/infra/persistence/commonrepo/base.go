package commonrepo

import "time"

// Mode 持久化对象的公共字段，主键由数据库自增生成
type Mode struct {
	ID        uint64    `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `gorm:"index;autoUpdateTime"`
}
