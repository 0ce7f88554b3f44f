package bot

import (
	"fmt"
	"strings"
)

// BotIDPrefix marks user ids that belong to bot seats.
const BotIDPrefix = "bot:"

// Agent is an autonomous player occupying a seat.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent creates an agent with the given difficulty.
func NewAgent(id, name string, level BotLevel) (*Agent, error) {
	brain, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Strategy: brain}, nil
}

// NewBrain creates a strategy for the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// IsBot reports whether the user id represents a bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, BotIDPrefix)
}

// DefaultIdentity returns a deterministic id/name pair for a bot seat.
func DefaultIdentity(seat int) (id, name string) {
	names := []string{"Ras", "Shelly", "Dexter", "Ursula"}
	return fmt.Sprintf("%sseat%d", BotIDPrefix, seat), names[seat%len(names)]
}
