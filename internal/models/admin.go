package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionToken is one live login session. Logout removes the exact
// token string, which invalidates it even before its JWT expiry.
type SessionToken struct {
	Token string `bson:"token" json:"-"`
}

type Admin struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName             string             `bson:"fullName" json:"fullName"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password" json:"-"`
	IsAdmin              bool               `bson:"isAdmin" json:"isAdmin"`
	IsBlocked            bool               `bson:"isBlocked" json:"isBlocked"`
	Tokens               []SessionToken     `bson:"tokens" json:"-"`
	ResetToken           string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiration *time.Time         `bson:"resetTokenExpiration,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
}

// PublicAdmin is the subset safe to embed in timeline responses.
type PublicAdmin struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
}
