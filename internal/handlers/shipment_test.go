package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestTimelineViewResolvesAdminAndCustomer(t *testing.T) {
	shipment := newTestShipment()
	view := TimelineShipmentView{
		Shipment: shipment,
		Customer: &models.PublicCustomer{
			ID:       primitive.NewObjectID(),
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "+12025550123",
		},
		Admin: &models.PublicAdmin{
			ID:       primitive.NewObjectID(),
			FullName: "Ops Admin",
			Email:    "ops@example.com",
		},
	}

	body, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, `"admin":{"id":`) {
		t.Fatalf("expected resolved admin object in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, `"fullName":"Ops Admin"`) || !strings.Contains(jsonBody, `"email":"ops@example.com"`) {
		t.Fatalf("expected admin public fields in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, `"fullName":"Ada Lovelace"`) {
		t.Fatalf("expected customer public fields in response json, got %s", jsonBody)
	}
}

func TestTimelineViewOmitsUnresolvedReferences(t *testing.T) {
	view := TimelineShipmentView{Shipment: newTestShipment()}

	body, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, `"admin":null`) || !strings.Contains(jsonBody, `"customer":null`) {
		t.Fatalf("expected null admin and customer when unresolved, got %s", jsonBody)
	}
}
