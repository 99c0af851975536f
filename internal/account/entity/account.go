package entity

import (
	"strconv"
	"time"
)

type Account struct {
	ID              int64
	Username        string
	Email           string
	PasswordHash    string
	IsMailConfirmed bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SubjectID keys the account's one-time codes.
func (a Account) SubjectID() string {
	return strconv.FormatInt(a.ID, 10)
}

type NewAccount struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
}
