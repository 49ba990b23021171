package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// Context keys set by AdminAuth.
const (
	ContextAdmin = "admin"
	ContextToken = "token"
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// extractBearerToken pulls the raw token out of an Authorization header.
func extractBearerToken(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", errMissingToken
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errInvalidToken
	}
	return parts[1], nil
}

// verifyAdminToken checks the HS256 signature and expiry and returns
// the admin id from the sub claim.
func verifyAdminToken(tokenString, secret string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, errInvalidToken
	}

	sub, _ := claims["sub"].(string)
	adminID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return primitive.NilObjectID, errInvalidToken
	}
	return adminID, nil
}

// sessionLookupFailure distinguishes a revoked or unknown session,
// which is an authentication failure, from a store error, which is
// not.
func sessionLookupFailure(err error) (int, string) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return http.StatusUnauthorized, "Session expired, please log in again"
	}
	return http.StatusInternalServerError, "Server error"
}

// AdminAuth resolves the bearer token to an admin principal. A token
// that verifies but is no longer in the admin's session list (logged
// out) fails the lookup, so revocation takes effect immediately.
// Blocked admins still resolve here; endpoint checks reject them.
func AdminAuth(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			log.Println("[AUTH] [ERROR]", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}

		adminID, err := verifyAdminToken(tokenString, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		err = db.Collection("admins").FindOne(ctx, bson.M{
			"_id":          adminID,
			"tokens.token": tokenString,
		}).Decode(&admin)
		if err != nil {
			log.Println("[AUTH] [ERROR] session lookup failed:", err)
			status, message := sessionLookupFailure(err)
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
			return
		}

		c.Set(ContextAdmin, admin)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}
