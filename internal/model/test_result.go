package model

import (
	"time"

	"github.com/google/uuid"
)

// TestResult is one measurement of one parameter on one sample. The
// composite unique index backs the one-result-per-parameter invariant; the
// service enforces it at creation time as well.
type TestResult struct {
	ID                uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SampleBatchNumber string        `gorm:"type:varchar(20);not null;uniqueIndex:idx_sample_parameter" json:"sample_batch_number"`
	Parameter         TestParameter `gorm:"type:varchar(30);not null;uniqueIndex:idx_sample_parameter" json:"parameter"`
	Value             float64       `gorm:"not null" json:"value"`
	Unit              Unit          `gorm:"type:varchar(20);not null" json:"unit"`
	Status            TestStatus    `gorm:"type:varchar(20);not null" json:"status"`
	Notes             string        `gorm:"type:text" json:"notes"`
	EnteredBy         string        `gorm:"type:varchar(50);not null;index" json:"entered_by"` // employee_id
	EnteredAt         time.Time     `gorm:"not null;index" json:"entered_at"`
}
