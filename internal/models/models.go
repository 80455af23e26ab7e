package models

import (
	"time"
)

// User represents the users table. The service only ever has one admin.
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:256;not null" json:"-"` // Don't expose password hash in JSON
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

func (User) TableName() string {
	return "users"
}

// AudioAsset represents one physical audio file known to the system
type AudioAsset struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename  string    `gorm:"size:255;not null;index:idx_audios_filename" json:"filename"` // Original casing, as stored in the directory
	Filepath  string    `gorm:"size:1024;not null" json:"filepath"`
	Mime      string    `gorm:"size:64;not null" json:"mime"`
	CreatedAt time.Time `json:"created_at"`
}

func (AudioAsset) TableName() string {
	return "audios"
}

// TableRow represents a row of the user-visible table
type TableRow struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Col1    string `gorm:"size:255;not null;default:''" json:"col1"`
	Col2    string `gorm:"size:255;not null;default:''" json:"col2"`
	AudioID *int64 `gorm:"index:idx_rows_audio_id" json:"audio_id"`

	// Relationships
	Audio *AudioAsset `gorm:"foreignKey:AudioID;constraint:OnDelete:SET NULL" json:"-"`
}

func (TableRow) TableName() string {
	return "rows"
}

// AudioFilename returns the filename of the referenced asset, or "" when unset
func (r *TableRow) AudioFilename() string {
	if r.Audio == nil {
		return ""
	}
	return r.Audio.Filename
}
