package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("admins").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAdminIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAdminIndexes: email index error:", err)
		return err
	}
	return nil
}

func EnsureCustomerIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("customers").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"email": bson.M{
					"$exists": true,
				},
			}),
	}

	ownerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdBy", Value: 1}},
		Options: options.Index().SetName("createdBy_index"),
	}

	log.Println("EnsureCustomerIndexes: creating email_unique and createdBy indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{emailIndex, ownerIndex})
	if err != nil {
		log.Println("EnsureCustomerIndexes: index error:", err)
		return err
	}
	return nil
}

// EnsureShipmentIndexes installs the unique trackingNumber index. The
// tracking number generator only pre-checks for collisions; this index
// is the authoritative guard against a concurrent duplicate insert.
func EnsureShipmentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("shipments").Indexes()

	trackingIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "trackingNumber", Value: 1}},
		Options: options.Index().
			SetName("trackingNumber_unique").
			SetUnique(true),
	}

	adminIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "admin", Value: 1}},
		Options: options.Index().SetName("admin_index"),
	}

	customerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "customer", Value: 1}},
		Options: options.Index().SetName("customer_index"),
	}

	log.Println("EnsureShipmentIndexes: creating trackingNumber_unique, admin and customer indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{trackingIndex, adminIndex, customerIndex})
	if err != nil {
		log.Println("EnsureShipmentIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureTrackingIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("trackings").Indexes()

	timelineIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "shipment", Value: 1},
			{Key: "timestamp", Value: 1},
		},
		Options: options.Index().SetName("shipment_timestamp_index"),
	}

	log.Println("EnsureTrackingIndexes: creating shipment_timestamp index")
	_, err := indexes.CreateOne(ctx, timelineIndex)
	if err != nil {
		log.Println("EnsureTrackingIndexes: index error:", err)
		return err
	}
	return nil
}
