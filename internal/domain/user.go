package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleEVOwner        UserRole = "ev_owner"
	UserRoleStationOwner   UserRole = "station_owner"
	UserRoleAdmin          UserRole = "admin"
	UserRoleSupportOfficer UserRole = "support_officer"
)

// IsStaff reports whether the role reviews requests and reports.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin || r == UserRoleSupportOfficer
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name"`
	Email          string     `json:"email" gorm:"uniqueIndex"`
	Phone          string     `json:"phone,omitempty" gorm:"index"`
	Password       string     `json:"-"` // Hashed password
	Role           UserRole   `json:"role" gorm:"index"`
	Status         UserStatus `json:"status"`
	ProfileImageID string     `json:"profile_image_id,omitempty"`
	NotifyByEmail  bool       `json:"notify_by_email" gorm:"default:true"`
	Vehicles       []Vehicle  `json:"vehicles,omitempty" gorm:"foreignKey:OwnerID"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Vehicle belongs to an EV owner
type Vehicle struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	OwnerID       string    `json:"owner_id" gorm:"index;not null"`
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	PlateNumber   string    `json:"plate_number"`
	ConnectorType string    `json:"connector_type"`
	BatteryKWh    float64   `json:"battery_kwh"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Label is the human-readable name snapshotted into bookings.
func (v *Vehicle) Label() string {
	label := v.Make
	if v.Model != "" {
		if label != "" {
			label += " "
		}
		label += v.Model
	}
	if v.PlateNumber != "" {
		label += " (" + v.PlateNumber + ")"
	}
	return label
}

// UserFilter narrows admin user listings
type UserFilter struct {
	Role   string
	Status string
	Search string
}
