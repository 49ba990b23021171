package handlers

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/cache"
	"backend/internal/models"
)

func TestValidPhoneAcceptsInternationalNumbers(t *testing.T) {
	valid := []string{
		"+12025550123",
		"12025550123",
		"+447911123456",
		"+2348012345678",
	}
	for _, phone := range valid {
		if !validPhone(phone) {
			t.Fatalf("expected %q to be a valid phone number", phone)
		}
	}
}

func TestValidPhoneRejectsMalformedNumbers(t *testing.T) {
	invalid := []string{
		"",
		"0123456789",
		"+0123456789",
		"12345",
		"+1 202 555 0123",
		"phone",
		"+1202555012345678",
	}
	for _, phone := range invalid {
		if validPhone(phone) {
			t.Fatalf("expected %q to be rejected", phone)
		}
	}
}

func TestCascadeShipmentFilterDelete(t *testing.T) {
	customerID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	got := cascadeShipmentFilter(customerID, adminID, false)
	want := bson.M{
		"customer":  customerID,
		"admin":     adminID,
		"isDeleted": bson.M{"$ne": true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected delete cascade filter %v", got)
	}
}

func TestCascadeShipmentFilterRestore(t *testing.T) {
	customerID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	got := cascadeShipmentFilter(customerID, adminID, true)
	want := bson.M{
		"customer":  customerID,
		"admin":     adminID,
		"isDeleted": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected restore cascade filter %v", got)
	}
}

// The restore cascade must target exactly the shipments the delete
// cascade flipped: same customer, same admin, opposite side of the
// soft-delete flag.
func TestCascadeFiltersAreSymmetric(t *testing.T) {
	customerID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()

	deleteFilter := cascadeShipmentFilter(customerID, adminID, false)
	restoreFilter := cascadeShipmentFilter(customerID, adminID, true)

	if deleteFilter["customer"] != restoreFilter["customer"] || deleteFilter["admin"] != restoreFilter["admin"] {
		t.Fatal("expected both cascades to scope by the same customer and admin")
	}
	if reflect.DeepEqual(deleteFilter["isDeleted"], restoreFilter["isDeleted"]) {
		t.Fatal("expected the cascades to target opposite deletion states")
	}
}

func TestTrackingNumbersSkipsBlanks(t *testing.T) {
	shipments := []models.Shipment{
		{TrackingNumber: "MSL-ABC1234567"},
		{TrackingNumber: ""},
		{TrackingNumber: "MSL-DEF1234567"},
	}

	got := trackingNumbers(shipments)
	want := []string{"MSL-ABC1234567", "MSL-DEF1234567"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// A cascade must drop the public-lookup snapshots of every shipment it
// flips, including negative entries, so the public endpoint reflects
// the new deletion state immediately.
func TestCascadeInvalidationDropsSnapshots(t *testing.T) {
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	trackingCache := cache.NewTrackingCache(rdb, 5*time.Minute)
	ctx := context.Background()

	shipments := make([]models.Shipment, 0, 3)
	for i := 0; i < 3; i++ {
		number := fmt.Sprintf("MSL-%010X", i)
		shipments = append(shipments, models.Shipment{TrackingNumber: number})
		trackingCache.Set(ctx, number, ShipmentView{})
	}
	trackingCache.SetNotFound(ctx, "MSL-00000000FF")
	shipments = append(shipments, models.Shipment{TrackingNumber: "MSL-00000000FF"})

	for _, number := range trackingNumbers(shipments) {
		trackingCache.Invalidate(ctx, number)
	}

	for _, shipment := range shipments {
		var snapshot ShipmentView
		if err := trackingCache.Get(ctx, shipment.TrackingNumber, &snapshot); err != cache.ErrMiss {
			t.Fatalf("expected %s to be evicted, got %v", shipment.TrackingNumber, err)
		}
	}
}
