package model

import (
	"time"

	"github.com/google/uuid"
)

// Request routes work between the QC lab and other departments. Exactly one
// of the two departments is "qc" depending on direction; the direction
// determines who may create and who may see it.
type Request struct {
	ID                uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SampleBatchNumber string        `gorm:"type:varchar(20);not null;index" json:"sample_batch_number"`
	RequestedBy       string        `gorm:"type:varchar(50);not null;index" json:"requested_by"` // employee_id
	SourceDepartment  string        `gorm:"type:varchar(100);not null;index" json:"source_department"`
	TargetDepartment  string        `gorm:"type:varchar(100);not null;index" json:"target_department"`
	Type              RequestType   `gorm:"type:varchar(30);not null" json:"type"`
	Status            RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// ToQC reports whether the request is directed at the QC department.
func (r *Request) ToQC() bool {
	return r.TargetDepartment == DepartmentQC
}

// FromQC reports whether the request originates from the QC department.
func (r *Request) FromQC() bool {
	return r.SourceDepartment == DepartmentQC
}
