package model

import "time"

// AdminSession is a signed admin token and the instant it stops being accepted.
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
