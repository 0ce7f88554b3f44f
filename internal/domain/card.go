package domain

import "fmt"

// Suit represents a card suit. NoSuit is the absence of a suit, used for
// "no card led yet" in trick validation.
type Suit int

const (
	NoSuit Suit = iota
	Hearts
	Diamonds
	Clubs
	Spades
)

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	case Spades:
		return "Spades"
	default:
		return "None"
	}
}

// AllSuits returns the four suits in a fixed order.
func AllSuits() []Suit {
	return []Suit{Hearts, Diamonds, Clubs, Spades}
}

// Rank represents a card rank. The numeric value is the rank's position in
// the All Fours total order: 2..10 map to themselves, Jack=11, Queen=12,
// King=13, Ace=14.
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Ace:
		return "Ace"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// AllRanks returns the thirteen ranks in ascending order.
func AllRanks() []Rank {
	return []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
}

// Card is an immutable playing card. Cards compare equal by (suit, rank),
// which plain == provides.
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}
