package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a laboratory or plant employee. EmployeeID is the
// human-facing key used throughout assignments, test entry, and requests.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"employee_id"`
	FullName   string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	Role       Role      `gorm:"type:varchar(50);not null" json:"role"`
	Department string    `gorm:"type:varchar(100);not null" json:"department"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Identity is the verified caller passed explicitly into every service
// operation. It carries exactly what gating decisions need.
type Identity struct {
	UserID     uuid.UUID
	EmployeeID string
	Role       Role
	Department string
}

// Identity derives the caller identity from a user record.
func (u *User) Identity() Identity {
	return Identity{
		UserID:     u.ID,
		EmployeeID: u.EmployeeID,
		Role:       u.Role,
		Department: u.Department,
	}
}

// AccessRequest is a registration request from a prospective user, reviewed
// by admins or QC managers before an account is created.
type AccessRequest struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName   string        `gorm:"type:varchar(255);not null" json:"full_name"`
	Email      string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	EmployeeID string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"employee_id"`
	Reason     string        `gorm:"type:text" json:"reason"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
