package handlers

import (
	"fmt"
	"time"

	"backend/internal/models"
)

type CreateShipmentRequest struct {
	Customer      string     `json:"customer" binding:"required"`
	SendersName   string     `json:"sendersName" binding:"required"`
	ReceiversName string     `json:"receiversName" binding:"required"`
	Origin        string     `json:"origin" binding:"required"`
	Destination   string     `json:"destination" binding:"required"`
	Weight        float64    `json:"weight"`
	Price         float64    `json:"price"`
	DeliveryDate  *time.Time `json:"deliveryDate"`
}

type UpdateShipmentRequest struct {
	SendersName   *string    `json:"sendersName"`
	ReceiversName *string    `json:"receiversName"`
	Origin        *string    `json:"origin"`
	Destination   *string    `json:"destination"`
	Weight        *float64   `json:"weight"`
	Price         *float64   `json:"price"`
	DeliveredAt   *time.Time `json:"deliveredAt"`
	Status        *string    `json:"status"`
	Location      *string    `json:"location"`
	Note          *string    `json:"note"`
}

// seedHistoryEntry is the single history record every shipment starts
// with.
func seedHistoryEntry(origin string, now time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		Status:    models.StatusPending,
		Location:  origin,
		Note:      "Shipment created",
		UpdatedAt: now,
	}
}

// composeUpdateNote builds the default note for a timeline entry when
// the caller did not supply one.
func composeUpdateNote(statusChanged, locationChanged bool, status, location string) string {
	switch {
	case statusChanged && locationChanged:
		return fmt.Sprintf("Status updated to %s at %s", status, location)
	case statusChanged:
		return fmt.Sprintf("Status updated to %s", status)
	default:
		return fmt.Sprintf("Location updated to %s", location)
	}
}

// applyShipmentUpdate mutates shipment in memory according to the
// request and reports whether a timeline entry was produced. Plain
// field edits never touch the history; a status or location change
// appends exactly one combined history entry and yields one matching
// tracking event the caller must persist.
func applyShipmentUpdate(shipment *models.Shipment, req UpdateShipmentRequest, now time.Time) (models.TrackingEvent, bool) {
	statusChanged := req.Status != nil && *req.Status != shipment.Status
	locationChanged := req.Location != nil && *req.Location != shipment.Location

	if req.SendersName != nil {
		shipment.SendersName = *req.SendersName
	}
	if req.ReceiversName != nil {
		shipment.ReceiversName = *req.ReceiversName
	}
	if req.Origin != nil {
		shipment.Origin = *req.Origin
	}
	if req.Destination != nil {
		shipment.Destination = *req.Destination
	}
	if req.Weight != nil {
		shipment.Weight = *req.Weight
	}
	if req.Price != nil {
		shipment.Price = *req.Price
	}
	if req.DeliveredAt != nil {
		shipment.DeliveredAt = req.DeliveredAt
	}
	if req.Location != nil {
		shipment.Location = *req.Location
	}

	if !statusChanged && !locationChanged {
		return models.TrackingEvent{}, false
	}

	entry := models.HistoryEntry{UpdatedAt: now}
	if statusChanged {
		shipment.Status = *req.Status
		entry.Status = *req.Status
	}
	if locationChanged {
		entry.Location = *req.Location
	}

	newStatus := ""
	if statusChanged {
		newStatus = *req.Status
	}
	newLocation := ""
	if locationChanged {
		newLocation = *req.Location
	}
	if req.Note != nil && *req.Note != "" {
		entry.Note = *req.Note
	} else {
		entry.Note = composeUpdateNote(statusChanged, locationChanged, newStatus, newLocation)
	}

	shipment.History = append(shipment.History, entry)

	event := models.TrackingEvent{
		Shipment:  shipment.ID,
		Status:    shipment.Status,
		Timestamp: now,
	}
	if locationChanged {
		event.Location = *req.Location
	} else {
		event.Location = shipment.Origin
	}

	return event, true
}
