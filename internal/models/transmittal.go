package models

import (
	"time"

	"gorm.io/datatypes"
)

// Status is the lifecycle state of a transmittal
type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusSent      Status = "sent"
	StatusReceived  Status = "received"
)

// Valid reports whether s is one of the known lifecycle states
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerated, StatusSent, StatusReceived:
		return true
	}
	return false
}

// Editable is true only while the transmittal is still a draft
func (s Status) Editable() bool {
	return s == StatusDraft
}

// SendMode is how the package is delivered
type SendMode string

const (
	SendModeHardcopy SendMode = "Hardcopy"
	SendModeSoftcopy SendMode = "Softcopy"
)

// Opposite flips Softcopy to Hardcopy; anything else becomes Softcopy
func (m SendMode) Opposite() SendMode {
	if m == SendModeSoftcopy {
		return SendModeHardcopy
	}
	return SendModeSoftcopy
}

// DocumentItem is one line of the document list. It has no identity of its own.
type DocumentItem struct {
	DocumentNo string `json:"document_no" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Revision   int    `json:"revision" validate:"gte=0"`
	Copies     int    `json:"copies" validate:"gt=0"`
	Action     string `json:"action"` // for approval, for planning, for information...
}

// SendDetails is recorded when the transmittal is sent
type SendDetails struct {
	DeliveryPerson *string   `json:"delivery_person"` // Receptionist, Me, Other
	SendDate       *DateTime `json:"send_date"`
}

// ReceiveDetails is recorded when the recipient acknowledges the package
type ReceiveDetails struct {
	ReceiptFile  *string `json:"receipt_file"` // base64 or data URL
	ReceivedDate *Date   `json:"received_date"`
	ReceivedTime *string `json:"received_time" validate:"omitempty,datetime=15:04"`
}

// Transmittal is the cover record of a document package sent to a party
type Transmittal struct {
	ID                string  `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	TransmittalNumber *string `gorm:"column:transmittal_number;type:varchar(32);uniqueIndex" json:"transmittal_number"`

	TransmittalType   string   `gorm:"column:transmittal_type;not null" json:"transmittal_type"` // Drawing, Documents
	Department        string   `gorm:"column:department;not null;index" json:"department"`
	DesignStage       *string  `gorm:"column:design_stage" json:"design_stage"`
	TransmittalDate   Date     `gorm:"column:transmittal_date;type:varchar(10);not null" json:"transmittal_date"`
	SendTo            string   `gorm:"column:send_to;not null" json:"send_to"`
	Salutation        string   `gorm:"column:salutation;not null" json:"salutation"`
	RecipientName     string   `gorm:"column:recipient_name;not null" json:"recipient_name"`
	SenderName        string   `gorm:"column:sender_name;not null" json:"sender_name"`
	SenderDesignation string   `gorm:"column:sender_designation;not null" json:"sender_designation"`
	SendMode          SendMode `gorm:"column:send_mode;type:varchar(16);not null" json:"send_mode"`

	Documents datatypes.JSONSlice[DocumentItem] `gorm:"column:documents;type:jsonb" json:"documents"`

	Title       string  `gorm:"column:title;not null" json:"title"`
	ProjectName *string `gorm:"column:project_name" json:"project_name"`
	Purpose     *string `gorm:"column:purpose;type:text" json:"purpose"`
	Remarks     *string `gorm:"column:remarks;type:text" json:"remarks"`

	Status        Status `gorm:"column:status;type:varchar(16);not null;default:'draft';index" json:"status"`
	DocumentCount int    `gorm:"column:document_count;not null;default:0" json:"document_count"`

	CreatedDate   time.Time  `gorm:"column:created_date;not null;index" json:"created_date"`
	GeneratedDate *time.Time `gorm:"column:generated_date" json:"generated_date"`

	SendDetails    *datatypes.JSONType[SendDetails]    `gorm:"column:send_details;type:jsonb" json:"send_details"`
	ReceiveDetails *datatypes.JSONType[ReceiveDetails] `gorm:"column:receive_details;type:jsonb" json:"receive_details"`
	SentStatus     *string                             `gorm:"column:sent_status" json:"sent_status"`         // Sent, Not Sent
	ReceivedStatus *string                             `gorm:"column:received_status" json:"received_status"` // Received, Not Received
}

// TableName specifies the table name
func (Transmittal) TableName() string {
	return "transmittals"
}

// Clone returns a copy that shares no mutable state with t
func (t *Transmittal) Clone() *Transmittal {
	c := *t
	c.Documents = make(datatypes.JSONSlice[DocumentItem], len(t.Documents))
	copy(c.Documents, t.Documents)
	return &c
}

// SetDocuments replaces the document list and keeps DocumentCount in step with it
func (t *Transmittal) SetDocuments(docs []DocumentItem) {
	t.Documents = make(datatypes.JSONSlice[DocumentItem], len(docs))
	copy(t.Documents, docs)
	t.DocumentCount = len(t.Documents)
}

// TransmittalCreate is the payload accepted when a draft is created
type TransmittalCreate struct {
	TransmittalType   string         `json:"transmittal_type" validate:"required"`
	Department        string         `json:"department" validate:"required"`
	DesignStage       *string        `json:"design_stage"` // only meaningful for drawings
	TransmittalDate   *Date          `json:"transmittal_date" validate:"required"`
	SendTo            string         `json:"send_to" validate:"required"`
	Salutation        string         `json:"salutation" validate:"required"`
	RecipientName     string         `json:"recipient_name" validate:"required"`
	SenderName        string         `json:"sender_name" validate:"required"`
	SenderDesignation string         `json:"sender_designation" validate:"required"`
	SendMode          SendMode       `json:"send_mode" validate:"required,oneof=Hardcopy Softcopy"`
	Documents         []DocumentItem `json:"documents" validate:"required,dive"` // may be empty, never absent
	Title             string         `json:"title" validate:"required"`
	ProjectName       *string        `json:"project_name"`
	Purpose           *string        `json:"purpose"`
	Remarks           *string        `json:"remarks"`
}
