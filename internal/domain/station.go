package domain

import (
	"time"
)

type StationStatus string

const (
	StationStatusPending  StationStatus = "pending"
	StationStatusApproved StationStatus = "approved"
	StationStatusRejected StationStatus = "rejected"
)

// ChargingStation is registered by a station owner and must be approved before
// it can take bookings.
type ChargingStation struct {
	ID         string        `json:"id" gorm:"primaryKey"`
	OwnerID    string        `json:"owner_id" gorm:"index;not null"`
	Name       string        `json:"name"`
	Address    string        `json:"address"`
	City       string        `json:"city" gorm:"index"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Status     StationStatus `json:"status" gorm:"index"`
	ReviewNote string        `json:"review_note,omitempty"`
	ReviewedBy string        `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
	ImageID    string        `json:"image_id,omitempty"`
	Chargers   []Charger     `json:"chargers" gorm:"foreignKey:StationID"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Charger is one physical charging unit of a station
type Charger struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	StationID      string          `json:"station_id" gorm:"index;not null"`
	Name           string          `json:"name"`
	PowerKW        float64         `json:"power_kw"`
	ConnectorTypes []ConnectorType `json:"connector_types" gorm:"foreignKey:ChargerID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ConnectorType is a plug standard offered by a charger, e.g. Type 2, CCS, CHAdeMO
type ConnectorType struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ChargerID string `json:"charger_id" gorm:"index;not null"`
	Type      string `json:"type"`
}

// Connector returns the charger's connector matching id or type label.
func (c *Charger) Connector(idOrType string) *ConnectorType {
	for i := range c.ConnectorTypes {
		ct := &c.ConnectorTypes[i]
		if ct.ID == idOrType || ct.Type == idOrType {
			return ct
		}
	}
	return nil
}

// StationFilter narrows station listings
type StationFilter struct {
	OwnerID string
	Status  StationStatus
	City    string
}
