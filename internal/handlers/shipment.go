package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/cache"
	"backend/internal/models"
)

// ShipmentView is a shipment with its customer reference resolved to
// the customer's public fields, mirroring list responses.
type ShipmentView struct {
	models.Shipment
	Customer *models.PublicCustomer `json:"customer"`
}

// TimelineShipmentView additionally resolves the creating admin's
// public fields for the timeline response.
type TimelineShipmentView struct {
	models.Shipment
	Customer *models.PublicCustomer `json:"customer"`
	Admin    *models.PublicAdmin    `json:"admin"`
}

// attachCustomers resolves customer references for a list of shipments
// in one query.
func attachCustomers(ctx context.Context, db *mongo.Database, shipments []models.Shipment) ([]ShipmentView, error) {
	ids := make([]primitive.ObjectID, 0, len(shipments))
	seen := map[primitive.ObjectID]struct{}{}
	for _, shipment := range shipments {
		if _, ok := seen[shipment.Customer]; ok {
			continue
		}
		seen[shipment.Customer] = struct{}{}
		ids = append(ids, shipment.Customer)
	}

	customerByID := map[primitive.ObjectID]models.PublicCustomer{}
	if len(ids) > 0 {
		cursor, err := db.Collection("customers").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		var customers []models.PublicCustomer
		if err := cursor.All(ctx, &customers); err != nil {
			return nil, err
		}
		for _, customer := range customers {
			customerByID[customer.ID] = customer
		}
	}

	views := make([]ShipmentView, 0, len(shipments))
	for _, shipment := range shipments {
		view := ShipmentView{Shipment: shipment}
		if customer, ok := customerByID[shipment.Customer]; ok {
			resolved := customer
			view.Customer = &resolved
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateShipment persists a new shipment with a generated tracking
// number and its seed history entry, then appends the first ledger
// event. The two inserts are separate store calls: if the ledger write
// fails, the shipment stays the system of record.
func CreateShipment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHIPMENT")

		admin, ok := requireActiveAdmin(c, "SHIPMENT")
		if !ok {
			return
		}

		var req CreateShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		customerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Customer))
		if err != nil {
			respondError(c, http.StatusBadRequest, "SHIPMENT", "Invalid customer id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = db.Collection("customers").FindOne(ctx, bson.M{
			"_id":       customerID,
			"isDeleted": bson.M{"$ne": true},
		}).Err()
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "SHIPMENT", "Customer not found or deleted")
				return
			}
			log.Println("[SHIPMENT] [ERROR] customer lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
			return
		}

		now := time.Now()
		shipment := models.Shipment{
			ID:            primitive.NewObjectID(),
			Customer:      customerID,
			Admin:         admin.ID,
			SendersName:   strings.TrimSpace(req.SendersName),
			ReceiversName: strings.TrimSpace(req.ReceiversName),
			Origin:        strings.TrimSpace(req.Origin),
			Destination:   strings.TrimSpace(req.Destination),
			Weight:        req.Weight,
			Price:         req.Price,
			Status:        models.StatusPending,
			DeliveredAt:   req.DeliveryDate,
			CreatedAt:     now,
		}
		shipment.History = []models.HistoryEntry{seedHistoryEntry(shipment.Origin, now)}

		// The generator pre-checks for collisions; the unique index
		// catches the race between check and insert, in which case a
		// fresh number is generated.
		for {
			trackingNumber, err := generateTrackingNumber(ctx, db)
			if err != nil {
				log.Println("[SHIPMENT] [ERROR] tracking number generation failed:", err)
				respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
				return
			}
			shipment.TrackingNumber = trackingNumber

			_, err = db.Collection("shipments").InsertOne(ctx, shipment)
			if err == nil {
				break
			}
			if mongo.IsDuplicateKeyError(err) {
				log.Println("[SHIPMENT] [WARN] tracking number collision, regenerating:", trackingNumber)
				continue
			}
			log.Println("[SHIPMENT] [ERROR] insert failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
			return
		}

		event := models.TrackingEvent{
			Shipment:  shipment.ID,
			Status:    shipment.Status,
			Location:  shipment.Origin,
			Timestamp: now,
		}
		if _, err := db.Collection("trackings").InsertOne(ctx, event); err != nil {
			// Ledger writes are best-effort secondary; the shipment is
			// already the system of record.
			log.Println("[SHIPMENT] [ERROR] initial tracking insert failed:", err)
		}

		log.Println("[SHIPMENT] [INFO] shipment created:", shipment.TrackingNumber)
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Shipment created successfully",
			"shipment": shipment,
			"tracking": event,
		})
	}
}

// UpdateShipment applies field edits and, when the status or location
// actually changed, appends one combined history entry and one ledger
// event.
func UpdateShipment(db *mongo.Database, trackingCache *cache.TrackingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHIPMENT")

		admin, ok := requireActiveAdmin(c, "SHIPMENT")
		if !ok {
			return
		}

		shipmentID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "SHIPMENT", "Invalid shipment id")
			return
		}

		var req UpdateShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Status != nil && !models.ValidStatus(*req.Status) {
			respondError(c, http.StatusBadRequest, "SHIPMENT", "Invalid shipment status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var shipment models.Shipment
		err = db.Collection("shipments").FindOne(ctx, bson.M{
			"_id":       shipmentID,
			"admin":     admin.ID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&shipment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "SHIPMENT", "Shipment not found")
				return
			}
			log.Println("[SHIPMENT] [ERROR] lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
			return
		}

		event, createdTimeline := applyShipmentUpdate(&shipment, req, time.Now())

		if createdTimeline {
			if _, err := db.Collection("trackings").InsertOne(ctx, event); err != nil {
				log.Println("[SHIPMENT] [ERROR] tracking insert failed:", err)
				respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
				return
			}
		}

		_, err = db.Collection("shipments").ReplaceOne(ctx, bson.M{"_id": shipment.ID}, shipment)
		if err != nil {
			log.Println("[SHIPMENT] [ERROR] save failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
			return
		}

		trackingCache.Invalidate(ctx, shipment.TrackingNumber)

		message := "Shipment details updated successfully"
		if createdTimeline {
			message = "Shipment updated successfully with new timeline entry"
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  message,
			"shipment": shipment,
		})
	}
}

// DeleteShipment soft-deletes a shipment owned by the caller. Ledger
// events are never removed; they stay readable through the timeline of
// a restored shipment.
func DeleteShipment(db *mongo.Database, trackingCache *cache.TrackingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHIPMENT")

		admin, ok := requireActiveAdmin(c, "SHIPMENT")
		if !ok {
			return
		}

		shipmentID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "SHIPMENT", "Invalid shipment id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var shipment models.Shipment
		err = db.Collection("shipments").FindOneAndUpdate(
			ctx,
			bson.M{
				"_id":   shipmentID,
				"admin": admin.ID,
			},
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&shipment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "SHIPMENT", "Shipment not found or you do not have permission to delete it")
				return
			}
			log.Println("[SHIPMENT] [ERROR] delete failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
			return
		}

		trackingCache.Invalidate(ctx, shipment.TrackingNumber)

		log.Println("[SHIPMENT] [INFO] shipment deleted:", shipment.TrackingNumber)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Shipment deleted successfully",
			"shipment": shipment,
		})
	}
}

// GetShipmentTimeline returns a shipment with its full ledger ordered
// by timestamp. Access is granted to the shipment's creating admin or
// to the owning admin of the shipment's customer, which covers
// hand-off after a customer reassignment.
func GetShipmentTimeline(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHIPMENT")

		admin, ok := requireActiveAdmin(c, "SHIPMENT")
		if !ok {
			return
		}

		raw := strings.TrimSpace(c.Param("shipmentId"))
		shipmentID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "SHIPMENT", "Invalid shipment ID format")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var shipment models.Shipment
		err = db.Collection("shipments").FindOne(ctx, bson.M{
			"_id":       shipmentID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&shipment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "SHIPMENT", "Shipment not found")
				return
			}
			log.Println("[SHIPMENT] [ERROR] timeline lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
			return
		}

		var customer models.Customer
		customerFound := true
		if err := db.Collection("customers").FindOne(ctx, bson.M{"_id": shipment.Customer}).Decode(&customer); err != nil {
			if err != mongo.ErrNoDocuments {
				log.Println("[SHIPMENT] [ERROR] timeline customer lookup failed:", err)
				respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
				return
			}
			customerFound = false
		}

		if admin.ID != shipment.Admin && (!customerFound || admin.ID != customer.CreatedBy) {
			respondError(c, http.StatusForbidden, "SHIPMENT", "Access denied: You are not authorized to view this shipment timeline")
			return
		}

		cursor, err := db.Collection("trackings").Find(
			ctx,
			bson.M{"shipment": shipmentID},
			options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
		)
		if err != nil {
			log.Println("[SHIPMENT] [ERROR] timeline fetch failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching shipment timeline")
			return
		}

		var timeline []models.TrackingEvent
		if err := cursor.All(ctx, &timeline); err != nil {
			log.Println("[SHIPMENT] [ERROR] timeline decode failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching shipment timeline")
			return
		}

		view := TimelineShipmentView{Shipment: shipment}
		if customerFound {
			view.Customer = &models.PublicCustomer{
				ID:       customer.ID,
				FullName: customer.FullName,
				Email:    customer.Email,
				Phone:    customer.Phone,
			}
		}

		if shipment.Admin == admin.ID {
			view.Admin = &models.PublicAdmin{
				ID:       admin.ID,
				FullName: admin.FullName,
				Email:    admin.Email,
			}
		} else {
			var creator models.PublicAdmin
			err := db.Collection("admins").FindOne(ctx, bson.M{"_id": shipment.Admin}).Decode(&creator)
			if err != nil && err != mongo.ErrNoDocuments {
				log.Println("[SHIPMENT] [ERROR] timeline admin lookup failed:", err)
				respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error")
				return
			}
			if err == nil {
				view.Admin = &creator
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Shipment timeline fetched successfully",
			"shipment": view,
			"timeline": timeline,
		})
	}
}

func GetAllShipments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHIPMENT")

		admin, ok := requireActiveAdmin(c, "SHIPMENT")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("shipments").Find(
			ctx,
			bson.M{
				"admin":     admin.ID,
				"isDeleted": bson.M{"$ne": true},
			},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			log.Println("[SHIPMENT] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching shipments")
			return
		}

		var shipments []models.Shipment
		if err := cursor.All(ctx, &shipments); err != nil {
			log.Println("[SHIPMENT] [ERROR] list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching shipments")
			return
		}

		if len(shipments) == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"success":   false,
				"message":   "No shipments found for this admin",
				"count":     0,
				"shipments": []ShipmentView{},
			})
			return
		}

		views, err := attachCustomers(ctx, db, shipments)
		if err != nil {
			log.Println("[SHIPMENT] [ERROR] customer resolution failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching shipments")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"count":     len(views),
			"shipments": views,
		})
	}
}

func GetDeletedShipments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "SHIPMENT")

		admin, ok := requireActiveAdmin(c, "SHIPMENT")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("shipments").Find(
			ctx,
			bson.M{
				"admin":     admin.ID,
				"isDeleted": true,
			},
			options.Find().SetSort(bson.D{{Key: "deletedAt", Value: -1}}),
		)
		if err != nil {
			log.Println("[SHIPMENT] [ERROR] deleted list failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching deleted shipments")
			return
		}

		var shipments []models.Shipment
		if err := cursor.All(ctx, &shipments); err != nil {
			log.Println("[SHIPMENT] [ERROR] deleted list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching deleted shipments")
			return
		}

		views, err := attachCustomers(ctx, db, shipments)
		if err != nil {
			log.Println("[SHIPMENT] [ERROR] customer resolution failed:", err)
			respondError(c, http.StatusInternalServerError, "SHIPMENT", "Server error while fetching deleted shipments")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"count":            len(views),
			"deletedShipments": views,
		})
	}
}
