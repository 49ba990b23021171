package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// trackingPrefix is the human-readable carrier prefix on every
// tracking number.
const trackingPrefix = "MSL"

// trackingSuffixBytes gives a 10-character uppercase hex suffix.
const trackingSuffixBytes = 5

// newTrackingCandidate produces one MSL-XXXXXXXXXX candidate from a
// cryptographically strong source.
func newTrackingCandidate() (string, error) {
	buf := make([]byte, trackingSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", trackingPrefix, strings.ToUpper(hex.EncodeToString(buf))), nil
}

// generateTrackingNumber returns a tracking number no existing shipment
// holds. The lookup is a best-effort pre-check; the unique index on
// shipments.trackingNumber remains the authoritative guard against a
// concurrent insert of the same candidate.
func generateTrackingNumber(ctx context.Context, db *mongo.Database) (string, error) {
	for {
		candidate, err := newTrackingCandidate()
		if err != nil {
			return "", err
		}

		err = db.Collection("shipments").FindOne(ctx, bson.M{"trackingNumber": candidate}).Err()
		if err == mongo.ErrNoDocuments {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}
