package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account known to this service. Rows are provisioned from token
// claims; credentials live with the token issuer.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email     string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName string    `json:"first_name" gorm:"size:150"`
	LastName  string    `json:"last_name" gorm:"size:150"`
	CreatedAt time.Time `json:"-"`
}

// UserView is a user as seen by a particular viewer.
type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// ToView renders u for a viewer; subscribed says whether that viewer follows u.
func (u User) ToView(subscribed bool) UserView {
	return UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// JwtCustomClaims are the claims this service expects in bearer tokens.
type JwtCustomClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// ToUser builds the user row a token describes.
func (c *JwtCustomClaims) ToUser() *User {
	return &User{
		ID:        c.UserID,
		Email:     c.Email,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}
