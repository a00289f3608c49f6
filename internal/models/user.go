package models

import (
	"errors"
	"time"
)

const DefaultTradingLevel = "Bronze"

type User struct {
	ID               string    `bson:"id" json:"id"`
	Email            string    `bson:"email" json:"email"`
	Password         string    `bson:"password" json:"-"`
	FirstName        string    `bson:"first_name" json:"first_name"`
	LastName         string    `bson:"last_name" json:"last_name"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	IsActive         bool      `bson:"is_active" json:"is_active"`
	TFTBalance       float64   `bson:"tft_balance" json:"tft_balance"`
	StakedAmount     float64   `bson:"staked_amount" json:"staked_amount"`
	TradingLevel     string    `bson:"trading_level" json:"trading_level"`
	TotalTrades      int       `bson:"total_trades" json:"total_trades"`
	SuccessfulTrades int       `bson:"successful_trades" json:"successful_trades"`
}

// NewUser builds an active account with no trading history.
// passwordHash is stored as given and never serialized to JSON.
func NewUser(id, email, passwordHash, firstName, lastName string, balance float64, createdAt time.Time) *User {
	return &User{
		ID:           id,
		Email:        email,
		Password:     passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    createdAt,
		IsActive:     true,
		TFTBalance:   balance,
		TradingLevel: DefaultTradingLevel,
	}
}

// Validate checks the fields every stored user must carry.
func (u *User) Validate() error {
	switch {
	case u.ID == "":
		return errors.New("user: missing id")
	case u.Email == "":
		return errors.New("user: missing email")
	case u.Password == "":
		return errors.New("user: missing password hash")
	case u.CreatedAt.IsZero():
		return errors.New("user: missing created_at")
	case u.TotalTrades < 0 || u.SuccessfulTrades < 0 || u.SuccessfulTrades > u.TotalTrades:
		return errors.New("user: inconsistent trade counters")
	}
	return nil
}

// Public returns a copy safe to hand to callers, with the password hash cleared.
func (u User) Public() User {
	u.Password = ""
	return u
}
