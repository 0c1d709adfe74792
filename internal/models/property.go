package models

import "time"

type Property struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	OwnerUserID uint64    `gorm:"not null;index" json:"owner_user_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Address     string    `gorm:"type:text" json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Projects []Project `gorm:"foreignKey:PropertyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
