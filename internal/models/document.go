package models

import "time"

type Document struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	ProjectID    uint64    `gorm:"not null;index" json:"project_id"`
	OwnerUserID  uint64    `gorm:"not null;index" json:"owner_user_id"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileLocation string    `gorm:"type:varchar(1024);not null" json:"file_location"`
	ContentType  string    `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}
