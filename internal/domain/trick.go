package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotYourTurn is returned when a player plays out of turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrCardNotHeld is returned when a player plays a card they do not hold.
	ErrCardNotHeld = errors.New("card not in hand")
)

// PlayedCard is a card together with the player who played it.
type PlayedCard struct {
	Card   Card
	Player *Player
}

// Trick is one exchange of exactly one card per player, in counter-clockwise
// order from the leader. It enforces play legality, resolves a winner and
// totals the game points of the cards played. A Trick is created per trick
// and abandoned after its results are read.
type Trick struct {
	players     []*Player
	trumpSuit   Suit
	leader      *Player
	playerOrder []*Player
	playedCards []PlayedCard
	current     int

	winner       *Player
	pointsEarned int
	jackPlayed   bool
	jackPlayer   *Player
}

// NewTrick creates a trick led by leader. Turn order is the rotation of
// players starting at the leader and proceeding to the right.
func NewTrick(players []*Player, trumpSuit Suit, leader *Player) *Trick {
	t := &Trick{
		players:   players,
		trumpSuit: trumpSuit,
		leader:    leader,
	}
	t.playerOrder = t.orderFrom(leader)
	return t
}

func (t *Trick) orderFrom(start *Player) []*Player {
	startIdx := 0
	for i, p := range t.players {
		if p == start {
			startIdx = i
			break
		}
	}

	ordered := make([]*Player, 0, len(t.players))
	idx := startIdx
	for range t.players {
		ordered = append(ordered, t.players[idx])
		idx = SeatToRight(idx, len(t.players))
	}
	return ordered
}

// PlayCard plays card for player. It fails when it is not the player's turn,
// when the play violates suit-following or undertrump rules, or when the
// player does not hold the card. On success the card moves from the hand
// into the trick; the fourth card resolves the winner.
func (t *Trick) PlayCard(card Card, player *Player) error {
	if t.CurrentPlayer() != player {
		return fmt.Errorf("%w: waiting on %s", ErrNotYourTurn, t.CurrentPlayer().Name)
	}

	if err := player.ValidatePlay(card, t.LeadSuit(), t.trumpSuit, t.cardsOnly()); err != nil {
		return err
	}

	if !player.RemoveCard(card) {
		return fmt.Errorf("%w: %s does not have %s", ErrCardNotHeld, player.Name, card)
	}

	t.playedCards = append(t.playedCards, PlayedCard{Card: card, Player: player})

	// Only one Jack of the trump suit exists per round, so first occurrence
	// is the only occurrence.
	if card.Rank == Jack && card.Suit == t.trumpSuit {
		t.jackPlayed = true
		t.jackPlayer = player
	}

	t.current++

	if t.IsComplete() {
		t.determineWinner()
	}
	return nil
}

// CurrentPlayer returns whose turn it is, or nil once the trick is complete.
func (t *Trick) CurrentPlayer() *Player {
	if t.IsComplete() {
		return nil
	}
	return t.playerOrder[t.current]
}

// IsComplete reports whether every player has played.
func (t *Trick) IsComplete() bool {
	return len(t.playedCards) == len(t.players)
}

// LeadSuit returns the suit of the first card played, or NoSuit before any
// card is down.
func (t *Trick) LeadSuit() Suit {
	if len(t.playedCards) == 0 {
		return NoSuit
	}
	return t.playedCards[0].Card.Suit
}

// Leader returns the player who leads the trick.
func (t *Trick) Leader() *Player {
	return t.leader
}

// PlayedCards returns the cards played so far, in play order.
func (t *Trick) PlayedCards() []PlayedCard {
	return t.playedCards
}

// Winner returns the trick winner, or nil before resolution.
func (t *Trick) Winner() *Player {
	return t.winner
}

// PointsEarned returns the game points contained in the trick.
func (t *Trick) PointsEarned() int {
	return t.pointsEarned
}

// JackPlayed reports whether the Jack of trump was played in this trick.
func (t *Trick) JackPlayed() bool {
	return t.jackPlayed
}

// JackPlayer returns who played the Jack of trump, or nil.
func (t *Trick) JackPlayer() *Player {
	return t.jackPlayer
}

// Reset clears the trick for reuse, optionally with a new leader.
func (t *Trick) Reset(newLeader *Player) {
	if newLeader != nil {
		t.leader = newLeader
		t.playerOrder = t.orderFrom(newLeader)
	}
	t.playedCards = nil
	t.current = 0
	t.winner = nil
	t.pointsEarned = 0
	t.jackPlayed = false
	t.jackPlayer = nil
}

// determineWinner folds IsWinningCard over the played cards in play order;
// the first card is the initial best.
func (t *Trick) determineWinner() {
	leadSuit := t.playedCards[0].Card.Suit
	best := t.playedCards[0]

	for _, entry := range t.playedCards[1:] {
		if IsWinningCard(entry.Card, best.Card, t.trumpSuit, leadSuit) {
			best = entry
		}
	}

	t.winner = best.Player

	total := 0
	for _, entry := range t.playedCards {
		total += GamePoints(entry.Card.Rank)
	}
	t.pointsEarned = total
}

func (t *Trick) cardsOnly() []Card {
	cards := make([]Card, len(t.playedCards))
	for i, entry := range t.playedCards {
		cards[i] = entry.Card
	}
	return cards
}
