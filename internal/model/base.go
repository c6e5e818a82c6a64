package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// --- 审计字段：通过运营接口修改时记录运营人员 ---
	CreatedBy string `gorm:"size:64;comment:创建人" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"size:64;comment:更新人" json:"updated_by,omitempty"`
}
