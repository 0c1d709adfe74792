package models

import "time"

type Project struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	PropertyID     uint64     `gorm:"not null;index" json:"property_id"`
	OwnerUserID    uint64     `gorm:"not null;index" json:"owner_user_id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Documents []Document `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
