package models

import "time"

// StatusCheck is a liveness ping recorded by a client
type StatusCheck struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	ClientName string    `gorm:"column:client_name;not null" json:"client_name" validate:"required"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

// TableName specifies the table name
func (StatusCheck) TableName() string {
	return "status_checks"
}

// TransmittalSequence is the per-year counter behind transmittal numbers
type TransmittalSequence struct {
	Year      int       `gorm:"column:year;primaryKey;autoIncrement:false"`
	Value     int       `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name
func (TransmittalSequence) TableName() string {
	return "transmittal_sequences"
}
