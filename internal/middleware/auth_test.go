package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, adminID primitive.ObjectID, secret string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": adminID.Hex(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token failed: %v", err)
	}
	return signed
}

func TestExtractBearerToken(t *testing.T) {
	if _, err := extractBearerToken(""); err != errMissingToken {
		t.Fatalf("expected errMissingToken for empty header, got %v", err)
	}
	if _, err := extractBearerToken("abc123"); err != errInvalidToken {
		t.Fatalf("expected errInvalidToken for bare token, got %v", err)
	}
	if _, err := extractBearerToken("Basic abc123"); err != errInvalidToken {
		t.Fatalf("expected errInvalidToken for non-bearer scheme, got %v", err)
	}

	token, err := extractBearerToken("Bearer abc123")
	if err != nil || token != "abc123" {
		t.Fatalf("expected abc123, got %q (err %v)", token, err)
	}

	token, err = extractBearerToken("bearer abc123")
	if err != nil || token != "abc123" {
		t.Fatalf("expected case-insensitive scheme, got %q (err %v)", token, err)
	}
}

func TestVerifyAdminToken(t *testing.T) {
	adminID := primitive.NewObjectID()
	token := signTestToken(t, adminID, testSecret, time.Hour)

	got, err := verifyAdminToken(token, testSecret)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if got != adminID {
		t.Fatalf("expected admin id %s, got %s", adminID.Hex(), got.Hex())
	}
}

func TestVerifyAdminTokenWrongSecret(t *testing.T) {
	token := signTestToken(t, primitive.NewObjectID(), "other-secret", time.Hour)
	if _, err := verifyAdminToken(token, testSecret); err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestVerifyAdminTokenExpired(t *testing.T) {
	token := signTestToken(t, primitive.NewObjectID(), testSecret, -time.Minute)
	if _, err := verifyAdminToken(token, testSecret); err == nil {
		t.Fatal("expected verification to fail for an expired token")
	}
}

func TestVerifyAdminTokenBadSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "not-an-object-id",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token failed: %v", err)
	}
	if _, err := verifyAdminToken(signed, testSecret); err == nil {
		t.Fatal("expected verification to fail for a malformed subject")
	}
}

func TestSessionLookupFailureRevokedSession(t *testing.T) {
	status, message := sessionLookupFailure(mongo.ErrNoDocuments)
	if status != 401 {
		t.Fatalf("expected 401 for a revoked or unknown session, got %d", status)
	}
	if message != "Session expired, please log in again" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestSessionLookupFailureStoreError(t *testing.T) {
	status, _ := sessionLookupFailure(errors.New("connection reset"))
	if status != 500 {
		t.Fatalf("expected 500 for a store error, got %d", status)
	}
}

func TestAdminAuthRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/shipment/getAllShipments", nil)

	// The handler aborts before any store access, so no database is
	// needed for this path.
	AdminAuth(nil, testSecret)(c)

	if recorder.Code != 401 {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestAdminAuthRejectsBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token := signTestToken(t, primitive.NewObjectID(), "other-secret", time.Hour)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/shipment/getAllShipments", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	AdminAuth(nil, testSecret)(c)

	if recorder.Code != 401 {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}
