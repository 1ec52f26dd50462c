package model

import (
	"time"

	"github.com/google/uuid"
)

// Sample is a material sample drawn from one of the production stages.
// BatchNumber is allocated once at creation and never changes.
type Sample struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SampleType  SampleType `gorm:"type:varchar(50);not null;index" json:"sample_type"`
	BatchNumber string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"batch_number"`
	CollectedAt time.Time  `gorm:"not null;index" json:"collected_at"`
	Location    string     `gorm:"type:varchar(255)" json:"location"`
	Notes       string     `gorm:"type:text" json:"notes"`
	AssignedTo  string     `gorm:"type:varchar(50);not null;index" json:"assigned_to"` // employee_id
	RequestedBy uuid.UUID  `gorm:"type:uuid;not null" json:"requested_by"`             // user id of the creator
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SampleAttachment is the metadata row for a file stored in the blob store.
// FileName is the opaque storage key, not the original upload name.
type SampleAttachment struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SampleID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"sample_id"`
	FileName       string         `gorm:"type:varchar(255);not null" json:"file_name"`
	FileType       string         `gorm:"type:varchar(100)" json:"file_type"` // declared content type
	Tag            AttachmentTag  `gorm:"type:varchar(30)" json:"tag"`
	AttachmentType AttachmentType `gorm:"type:varchar(20);not null" json:"attachment_type"`
	UploadedBy     string         `gorm:"type:varchar(50);not null;index" json:"uploaded_by"` // employee_id
	UploadedAt     time.Time      `gorm:"autoCreateTime" json:"uploaded_at"`
}
