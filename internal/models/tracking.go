package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackingEvent is one immutable ledger fact about a shipment. Events
// are append-only and survive soft deletion of the parent shipment.
type TrackingEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Shipment  primitive.ObjectID `bson:"shipment" json:"shipment"`
	Status    string             `bson:"status" json:"status"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
