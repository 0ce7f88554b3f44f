package nakama

import (
	"allfours/internal/domain"
)

// WireCard is the JSON representation of a card on the wire.
type WireCard struct {
	Suit int `json:"suit"`
	Rank int `json:"rank"`
}

func toWireCard(c domain.Card) WireCard {
	return WireCard{Suit: int(c.Suit), Rank: int(c.Rank)}
}

func toWireCards(cards []domain.Card) []WireCard {
	out := make([]WireCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, toWireCard(c))
	}
	return out
}

func fromWireCard(w WireCard) domain.Card {
	return domain.Card{Suit: domain.Suit(w.Suit), Rank: domain.Rank(w.Rank)}
}

// PlayerJoinedEvent announces a presence taking a seat.
type PlayerJoinedEvent struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
}

// PlayerLeftEvent announces a presence leaving the lobby.
type PlayerLeftEvent struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

// MatchStartedEvent carries the full seating order at game start.
type MatchStartedEvent struct {
	Seats []SeatInfo `json:"seats"`
}

// SeatInfo names one seated player.
type SeatInfo struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	IsBot  bool   `json:"is_bot"`
}

// HandDealtEvent is sent privately to each player after a deal.
type HandDealtEvent struct {
	Cards []WireCard `json:"cards"`
}

// PromptDecisionEvent asks a player a yes/no question.
type PromptDecisionEvent struct {
	Prompt  string `json:"prompt"`
	YesText string `json:"yes_text"`
	NoText  string `json:"no_text"`
}

// PromptCardEvent asks a player to choose a card from their hand.
type PromptCardEvent struct {
	Hand []WireCard `json:"hand"`
}

// MessageEvent is a broadcast game log line.
type MessageEvent struct {
	Text string `json:"text"`
}

// KickedCardEvent announces the card turned up from the pack.
type KickedCardEvent struct {
	Card WireCard `json:"card"`
}

// TrickStateEvent carries the cards played to the current trick in order.
// An empty Plays slice means the table was cleared for the next trick.
type TrickStateEvent struct {
	Plays []TrickPlay `json:"plays"`
}

// TrickPlay is one card played by one player.
type TrickPlay struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Card   WireCard `json:"card"`
}

// ScoresEvent carries both teams' match scores.
type ScoresEvent struct {
	TeamAName  string `json:"team_a_name"`
	TeamAScore int    `json:"team_a_score"`
	TeamBName  string `json:"team_b_name"`
	TeamBScore int    `json:"team_b_score"`
}

// ActivePlayerEvent names the player whose turn it is.
type ActivePlayerEvent struct {
	UserID string `json:"user_id"`
}

// RejectPlayEvent is sent privately when a play was refused.
type RejectPlayEvent struct {
	Reason string `json:"reason"`
}

// MatchEndedEvent announces the winning team.
type MatchEndedEvent struct {
	WinningTeam string `json:"winning_team"`
	Score       int    `json:"score"`
}

// DecisionMessage is the client answer to a PromptDecisionEvent.
type DecisionMessage struct {
	Answer string `json:"answer"` // "yes" or "no"
}

// PlayCardMessage is the client answer to a PromptCardEvent.
type PlayCardMessage struct {
	Index int `json:"index"` // index into the prompted hand
}
