package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/cache"
	"backend/internal/models"
)

// normalizeTrackingNumber uppercases user input so lookups are
// case-insensitive; tracking numbers are stored uppercase.
func normalizeTrackingNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// TrackShipment is the public, unauthenticated tracking lookup. It
// returns the shipment snapshot with the customer's public fields only;
// the full ledger stays behind the authenticated timeline endpoint.
func TrackShipment(db *mongo.Database, trackingCache *cache.TrackingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "TRACK")

		trackingNumber := normalizeTrackingNumber(c.Param("trackingNumber"))
		if trackingNumber == "" {
			respondError(c, http.StatusBadRequest, "TRACK", "Tracking number is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cached ShipmentView
		switch err := trackingCache.Get(ctx, trackingNumber, &cached); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"message":  "Shipment found successfully",
				"shipment": cached,
			})
			return
		case cache.ErrNotFound:
			respondError(c, http.StatusNotFound, "TRACK", "Shipment not found")
			return
		}

		var shipment models.Shipment
		err := db.Collection("shipments").FindOne(ctx, bson.M{
			"trackingNumber": trackingNumber,
			"isDeleted":      bson.M{"$ne": true},
		}).Decode(&shipment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				trackingCache.SetNotFound(ctx, trackingNumber)
				respondError(c, http.StatusNotFound, "TRACK", "Shipment not found")
				return
			}
			log.Println("[TRACK] [ERROR] lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "TRACK", "Internal server error")
			return
		}

		views, err := attachCustomers(ctx, db, []models.Shipment{shipment})
		if err != nil {
			log.Println("[TRACK] [ERROR] customer resolution failed:", err)
			respondError(c, http.StatusInternalServerError, "TRACK", "Internal server error")
			return
		}
		view := views[0]

		trackingCache.Set(ctx, trackingNumber, view)

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Shipment found successfully",
			"shipment": view,
		})
	}
}
