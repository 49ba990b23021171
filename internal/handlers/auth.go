package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/middleware"
	"backend/internal/models"
)

type CreateAdminRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type NewPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
	AdminID  string `json:"adminId" binding:"required"`
}

// issueAdminToken signs a session token and appends it to the admin's
// live token set. Revocation later removes exactly this string.
func issueAdminToken(ctx context.Context, db *mongo.Database, adminID primitive.ObjectID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": adminID.Hex(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	_, err = db.Collection("admins").UpdateByID(ctx, adminID, bson.M{
		"$push": bson.M{"tokens": models.SessionToken{Token: signed}},
	})
	if err != nil {
		return "", err
	}
	return signed, nil
}

func newResetToken() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

func CreateAdmin(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		var req CreateAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("admins").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] admin lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, "AUTH", "E-mail exists already, please pick a different one")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] password hash failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}

		admin := models.Admin{
			ID:        primitive.NewObjectID(),
			FullName:  strings.TrimSpace(req.FullName),
			Email:     email,
			Password:  string(hash),
			IsAdmin:   true,
			Tokens:    []models.SessionToken{},
			CreatedAt: time.Now(),
		}

		if _, err := db.Collection("admins").InsertOne(ctx, admin); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, "AUTH", "E-mail exists already, please pick a different one")
				return
			}
			log.Println("[AUTH] [ERROR] admin insert failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Error creating admin")
			return
		}

		token, err := issueAdminToken(ctx, db, admin.ID, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] token generation failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Error generating token")
			return
		}

		log.Println("[AUTH] [INFO] admin created:", admin.Email)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": fmt.Sprintf("Hello %s thanks for joining us, kindly log into your account", admin.FullName),
			"admin":   admin,
			"token":   token,
		})
	}
}

func LoginAdmin(db *mongo.Database, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		err := db.Collection("admins").FindOne(ctx, bson.M{"email": email}).Decode(&admin)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusUnauthorized, "AUTH", "Invalid email or password")
				return
			}
			log.Println("[AUTH] [ERROR] login lookup failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
			respondError(c, http.StatusUnauthorized, "AUTH", "Invalid email or password")
			return
		}

		if admin.IsBlocked {
			respondError(c, http.StatusForbidden, "AUTH",
				fmt.Sprintf("Hello %s, your account is blocked. Please contact the system administrator", admin.FullName))
			return
		}

		token, err := issueAdminToken(ctx, db, admin.ID, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] token generation failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Error generating token")
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", admin.Email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Login successful",
			"admin":   admin,
			"token":   token,
		})
	}
}

// LogoutAdmin removes the presented token from the admin's session
// list. The same JWT is rejected by the auth gate afterwards even
// though its signature is still valid.
func LogoutAdmin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		admin, ok := currentAdmin(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "AUTH", "Authentication required")
			return
		}
		tokenValue, _ := c.Get(middleware.ContextToken)
		tokenString, _ := tokenValue.(string)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("admins").UpdateByID(ctx, admin.ID, bson.M{
			"$pull": bson.M{"tokens": bson.M{"token": tokenString}},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] logout failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}

		log.Println("[AUTH] [INFO] logout succeeded:", admin.Email)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
	}
}

// PostReset starts the password reset flow: a random token with a
// bounded lifetime is stored on the admin. Mail delivery is out of
// scope; the token is written to the server log only.
func PostReset(db *mongo.Database, resetTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		var req ResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		if err := db.Collection("admins").FindOne(ctx, bson.M{"email": email}).Decode(&admin); err != nil {
			respondError(c, http.StatusNotFound, "AUTH", "No account found for this email")
			return
		}

		token, err := newResetToken()
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token generation failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}
		expiration := time.Now().Add(resetTTL)

		_, err = db.Collection("admins").UpdateByID(ctx, admin.ID, bson.M{
			"$set": bson.M{
				"resetToken":           token,
				"resetTokenExpiration": expiration,
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token save failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}

		log.Println("[AUTH] [INFO] reset token issued for:", admin.Email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Reset email sent",
			"adminId": admin.ID.Hex(),
		})
	}
}

// GetNewPassword validates a reset token before the change form is
// shown.
func GetNewPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			respondError(c, http.StatusBadRequest, "AUTH", "Reset token is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		err := db.Collection("admins").FindOne(ctx, bson.M{
			"resetToken":           token,
			"resetTokenExpiration": bson.M{"$gt": time.Now()},
		}).Decode(&admin)
		if err != nil {
			respondError(c, http.StatusNotFound, "AUTH", "Reset token is invalid or expired")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"adminId": admin.ID.Hex(),
		})
	}
}

// PostNewPassword completes the reset: the token must still be valid,
// the new password is hashed, and every live session is revoked along
// with the reset token.
func PostNewPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AUTH")

		token := strings.TrimSpace(c.Param("token"))

		var req NewPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		adminID, err := primitive.ObjectIDFromHex(req.AdminID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "AUTH", "Invalid admin id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var admin models.Admin
		err = db.Collection("admins").FindOne(ctx, bson.M{
			"_id":                  adminID,
			"resetToken":           token,
			"resetTokenExpiration": bson.M{"$gt": time.Now()},
		}).Decode(&admin)
		if err != nil {
			respondError(c, http.StatusNotFound, "AUTH", "Reset token is invalid or expired")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] password hash failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}

		_, err = db.Collection("admins").UpdateByID(ctx, admin.ID, bson.M{
			"$set": bson.M{
				"password": string(hash),
				"tokens":   []models.SessionToken{},
			},
			"$unset": bson.M{
				"resetToken":           "",
				"resetTokenExpiration": "",
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] password update failed:", err)
			respondError(c, http.StatusInternalServerError, "AUTH", "Server error")
			return
		}

		log.Println("[AUTH] [INFO] password updated for:", admin.Email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Password updated successfully",
		})
	}
}
