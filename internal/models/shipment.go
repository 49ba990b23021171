package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shipment statuses. No transition graph is enforced: operators may
// move a shipment between any two statuses, but every change is
// recorded in the history and the tracking ledger.
const (
	StatusPending   = "pending"
	StatusAssigned  = "assigned"
	StatusInTransit = "in-transit"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is one of the shipment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// HistoryEntry is one embedded timeline record on a shipment. Status is
// only set when the entry recorded a status change, so the shipment's
// current status always equals the latest status-bearing entry.
type HistoryEntry struct {
	Status    string    `bson:"status,omitempty" json:"status,omitempty"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Shipment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingNumber string             `bson:"trackingNumber" json:"trackingNumber"`
	Customer       primitive.ObjectID `bson:"customer" json:"customer"`
	Admin          primitive.ObjectID `bson:"admin" json:"admin"`
	SendersName    string             `bson:"sendersName" json:"sendersName"`
	ReceiversName  string             `bson:"receiversName" json:"receiversName"`
	Origin         string             `bson:"origin" json:"origin"`
	Destination    string             `bson:"destination" json:"destination"`
	Weight         float64            `bson:"weight,omitempty" json:"weight,omitempty"`
	Price          float64            `bson:"price,omitempty" json:"price,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Status         string             `bson:"status" json:"status"`
	History        []HistoryEntry     `bson:"history" json:"history"`
	IsDeleted      bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt      *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeliveredAt    *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
