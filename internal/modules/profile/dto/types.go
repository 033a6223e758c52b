package dto

import "time"

type RegisterInput struct {
	Username string
	// BaselineMinutes defaults to 300 when zero.
	BaselineMinutes int
}

type ProfileOutput struct {
	Username        string
	Points          int
	Balance         float64
	BaselineMinutes int
	TargetMinutes   int
	RedeemableValue float64
	CreatedAt       time.Time
}
