package domain

// Compare orders two cards by rank only. The result is negative when c1 is
// lower than c2, zero when the ranks match, positive when c1 is higher.
func Compare(c1, c2 Card) int {
	return int(c1.Rank) - int(c2.Rank)
}

// IsWinningCard reports whether candidate beats the current best card of a
// trick. Trump beats non-trump unconditionally; among non-trump cards a card
// of the lead suit beats one matching neither suit; otherwise the higher rank
// wins.
func IsWinningCard(candidate, best Card, trumpSuit, leadSuit Suit) bool {
	candidateTrump := candidate.Suit == trumpSuit
	bestTrump := best.Suit == trumpSuit

	if candidateTrump != bestTrump {
		return candidateTrump
	}

	if !candidateTrump {
		candidateLead := candidate.Suit == leadSuit
		bestLead := best.Suit == leadSuit
		if candidateLead != bestLead {
			return candidateLead
		}
	}

	return Compare(candidate, best) > 0
}

// GamePoints returns the game-point value a rank contributes to the trick it
// is played in (Ace=4, King=3, Queen=2, Jack=1, Ten=10).
func GamePoints(r Rank) int {
	switch r {
	case Ace:
		return 4
	case King:
		return 3
	case Queen:
		return 2
	case Jack:
		return 1
	case Ten:
		return 10
	default:
		return 0
	}
}

// KickPoints returns the chalk awarded to the dealer's team when a card of
// this rank is kicked (Ace=1, Six=2, Jack=3).
func KickPoints(r Rank) int {
	switch r {
	case Ace:
		return 1
	case Six:
		return 2
	case Jack:
		return 3
	default:
		return 0
	}
}

// SeatToRight returns the seat counter-clockwise from i, i.e. the seat of the
// player to i's right. Every turn-order and rotation computation goes through
// here.
func SeatToRight(i, totalSeats int) int {
	return (i - 1 + totalSeats) % totalSeats
}
