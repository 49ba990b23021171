package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
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

// defaultCountry is stored when a customer is created without one.
const defaultCountry = "enter country"

// phonePattern accepts international numbers with an optional leading
// plus, 7 to 15 digits, no leading zero.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

func validPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

type CreateCustomerRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required"`
	Country  string `json:"country"`
}

type UpdateCustomerRequest struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Country  *string `json:"country"`
}

func CreateCustomer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		var req CreateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !validPhone(strings.TrimSpace(req.Phone)) {
			respondError(c, http.StatusBadRequest, "CUSTOMER", "Invalid phone number format")
			return
		}

		country := strings.TrimSpace(req.Country)
		if country == "" {
			country = defaultCountry
		}

		now := time.Now()
		customer := models.Customer{
			ID:        primitive.NewObjectID(),
			FullName:  strings.TrimSpace(req.FullName),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			Address:   strings.TrimSpace(req.Address),
			City:      strings.TrimSpace(req.City),
			Country:   country,
			CreatedBy: admin.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("customers").InsertOne(ctx, customer); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, "CUSTOMER", "A customer with this email already exists")
				return
			}
			log.Println("[CUSTOMER] [ERROR] insert failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		log.Println("[CUSTOMER] [INFO] customer created:", customer.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Customer created successfully",
			"customer": customer,
		})
	}
}

func UpdateCustomer(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		customerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "CUSTOMER", "Invalid customer id")
			return
		}

		var req UpdateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.FullName != nil {
			set["fullName"] = strings.TrimSpace(*req.FullName)
		}
		if req.Phone != nil {
			if !validPhone(strings.TrimSpace(*req.Phone)) {
				respondError(c, http.StatusBadRequest, "CUSTOMER", "Invalid phone number format")
				return
			}
			set["phone"] = strings.TrimSpace(*req.Phone)
		}
		if req.Email != nil {
			set["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.Address != nil {
			set["address"] = strings.TrimSpace(*req.Address)
		}
		if req.City != nil {
			set["city"] = strings.TrimSpace(*req.City)
		}
		if req.Country != nil {
			set["country"] = strings.TrimSpace(*req.Country)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var customer models.Customer
		err = db.Collection("customers").FindOneAndUpdate(
			ctx,
			bson.M{
				"_id":       customerID,
				"createdBy": admin.ID,
				"isDeleted": bson.M{"$ne": true},
			},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&customer)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "CUSTOMER", "Customer not found or you are not authorized to update it")
				return
			}
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, "CUSTOMER", "A customer with this email already exists")
				return
			}
			log.Println("[CUSTOMER] [ERROR] update failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Customer updated successfully",
			"customer": customer,
		})
	}
}

// cascadeShipmentFilter matches the customer's shipments owned by the
// same admin on the relevant side of the soft-delete flag: deleting a
// customer cascades to the non-deleted shipments, restoring one to the
// deleted shipments.
func cascadeShipmentFilter(customerID, adminID primitive.ObjectID, restoring bool) bson.M {
	filter := bson.M{
		"customer": customerID,
		"admin":    adminID,
	}
	if restoring {
		filter["isDeleted"] = true
	} else {
		filter["isDeleted"] = bson.M{"$ne": true}
	}
	return filter
}

// trackingNumbers collects tracking numbers for cache invalidation.
func trackingNumbers(shipments []models.Shipment) []string {
	numbers := make([]string, 0, len(shipments))
	for _, shipment := range shipments {
		if shipment.TrackingNumber != "" {
			numbers = append(numbers, shipment.TrackingNumber)
		}
	}
	return numbers
}

// invalidateCascadedShipments drops the public-lookup snapshots of the
// shipments a cascade is about to flip, so the public endpoint cannot
// keep serving a deleted shipment (or masking a restored one) from the
// cache.
func invalidateCascadedShipments(ctx context.Context, db *mongo.Database, trackingCache *cache.TrackingCache, filter bson.M) {
	cursor, err := db.Collection("shipments").Find(ctx, filter)
	if err != nil {
		log.Println("[CUSTOMER] [ERROR] cascade snapshot lookup failed:", err)
		return
	}

	var affected []models.Shipment
	if err := cursor.All(ctx, &affected); err != nil {
		log.Println("[CUSTOMER] [ERROR] cascade snapshot decode failed:", err)
		return
	}

	for _, trackingNumber := range trackingNumbers(affected) {
		trackingCache.Invalidate(ctx, trackingNumber)
	}
}

// DeleteCustomer soft-deletes a customer and cascades the flag to every
// non-deleted shipment of that customer owned by the same admin. The
// two writes are separate store calls; a failure in between leaves the
// customer deleted and the cascade incomplete but recoverable.
func DeleteCustomer(db *mongo.Database, trackingCache *cache.TrackingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		customerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "CUSTOMER", "Invalid customer id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("customers").UpdateOne(
			ctx,
			bson.M{
				"_id":       customerID,
				"createdBy": admin.ID,
				"isDeleted": bson.M{"$ne": true},
			},
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now}},
		)
		if err != nil {
			log.Println("[CUSTOMER] [ERROR] delete failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}
		if result.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "CUSTOMER", "Customer not found, already deleted, or you are not authorized to delete it")
			return
		}

		cascadeFilter := cascadeShipmentFilter(customerID, admin.ID, false)
		invalidateCascadedShipments(ctx, db, trackingCache, cascadeFilter)

		cascade, err := db.Collection("shipments").UpdateMany(
			ctx,
			cascadeFilter,
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now}},
		)
		if err != nil {
			log.Println("[CUSTOMER] [ERROR] shipment cascade failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error while deleting customer shipments")
			return
		}

		log.Printf("[CUSTOMER] [INFO] customer %s deleted with %d shipment(s)", customerID.Hex(), cascade.ModifiedCount)
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    fmt.Sprintf("Customer and %d associated shipment(s) deleted successfully", cascade.ModifiedCount),
			"customerId": customerID.Hex(),
		})
	}
}

// RestoreCustomer reverses a soft delete and restores the customer's
// soft-deleted shipments owned by the same admin. Restored shipments'
// cache entries are dropped so a negatively cached public lookup does
// not keep reporting them missing.
func RestoreCustomer(db *mongo.Database, trackingCache *cache.TrackingCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		customerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "CUSTOMER", "Invalid customer id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var customer models.Customer
		err = db.Collection("customers").FindOneAndUpdate(
			ctx,
			bson.M{
				"_id":       customerID,
				"createdBy": admin.ID,
				"isDeleted": true,
			},
			bson.M{
				"$set":   bson.M{"isDeleted": false, "updatedAt": time.Now()},
				"$unset": bson.M{"deletedAt": ""},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&customer)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "CUSTOMER", "Customer not found or you are not authorized to restore it")
				return
			}
			log.Println("[CUSTOMER] [ERROR] restore failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		cascadeFilter := cascadeShipmentFilter(customerID, admin.ID, true)
		invalidateCascadedShipments(ctx, db, trackingCache, cascadeFilter)

		cascade, err := db.Collection("shipments").UpdateMany(
			ctx,
			cascadeFilter,
			bson.M{
				"$set":   bson.M{"isDeleted": false},
				"$unset": bson.M{"deletedAt": ""},
			},
		)
		if err != nil {
			log.Println("[CUSTOMER] [ERROR] shipment restore cascade failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error while restoring customer shipments")
			return
		}

		log.Printf("[CUSTOMER] [INFO] customer %s restored with %d shipment(s)", customerID.Hex(), cascade.ModifiedCount)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  fmt.Sprintf("Customer and %d associated shipment(s) restored successfully", cascade.ModifiedCount),
			"customer": customer,
		})
	}
}

func GetCustomersByAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("customers").Find(
			ctx,
			bson.M{
				"createdBy": admin.ID,
				"isDeleted": bson.M{"$ne": true},
			},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			log.Println("[CUSTOMER] [ERROR] list failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		var customers []models.Customer
		if err := cursor.All(ctx, &customers); err != nil {
			log.Println("[CUSTOMER] [ERROR] list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		if len(customers) == 0 {
			respondError(c, http.StatusNotFound, "CUSTOMER", "No active customers found for this admin")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"total":     len(customers),
			"customers": customers,
		})
	}
}

func GetDeletedCustomers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("customers").Find(
			ctx,
			bson.M{
				"createdBy": admin.ID,
				"isDeleted": true,
			},
			options.Find().SetSort(bson.D{{Key: "deletedAt", Value: -1}}),
		)
		if err != nil {
			log.Println("[CUSTOMER] [ERROR] deleted list failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		var customers []models.Customer
		if err := cursor.All(ctx, &customers); err != nil {
			log.Println("[CUSTOMER] [ERROR] deleted list decode failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"count":     len(customers),
			"customers": customers,
		})
	}
}

// GetCustomerByID answers 404, not 403, when the customer belongs to
// another admin so the endpoint never confirms existence.
func GetCustomerByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "CUSTOMER")

		admin, ok := requireActiveAdmin(c, "CUSTOMER")
		if !ok {
			return
		}

		customerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "CUSTOMER", "Invalid customer id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var customer models.Customer
		err = db.Collection("customers").FindOne(ctx, bson.M{
			"_id":       customerID,
			"createdBy": admin.ID,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&customer)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, "CUSTOMER", "Customer not found or deleted")
				return
			}
			log.Println("[CUSTOMER] [ERROR] get by id failed:", err)
			respondError(c, http.StatusInternalServerError, "CUSTOMER", "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"customer": customer,
		})
	}
}
