package trading

import (
	"fmt"
	"strings"
	"time"
)

// Action represents the trade direction
type Action string

const (
	ActionBuy   Action = "Buy"
	ActionSell  Action = "Sell"
	ActionShort Action = "Short"
)

// IsValid checks if the action is one the backend accepts
func (a Action) IsValid() bool {
	return a == ActionBuy || a == ActionSell || a == ActionShort
}

// ActionFromString creates an Action from a string (case-insensitive)
func ActionFromString(value string) (Action, error) {
	switch strings.ToLower(value) {
	case "buy":
		return ActionBuy, nil
	case "sell":
		return ActionSell, nil
	case "short":
		return ActionShort, nil
	default:
		return "", fmt.Errorf("invalid trade action: %q", value)
	}
}

// Confirmation is the result of a successfully submitted trade.
type Confirmation struct {
	ID          string    `json:"id"` // client-side correlation ID
	Asset       string    `json:"asset"`
	Quantity    float64   `json:"quantity"`
	Action      Action    `json:"action"`
	Message     string    `json:"message"` // backend-provided
	SubmittedAt time.Time `json:"submitted_at"`
}
