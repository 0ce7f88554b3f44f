package bot

import "allfours/internal/domain"

// GoodBot is the baseline strategy: it keeps strong trump, otherwise begs,
// and always plays the cheapest legal card.
type GoodBot struct{}

func (b *GoodBot) DecideBeg(hand []domain.Card, trump domain.Suit) bool {
	count, highest := trumpProfile(hand, trump)
	if count == 0 {
		return true // cannot legally stand anyway
	}
	return count == 1 && highest < domain.Ten
}

func (b *GoodBot) DecideGive(hand []domain.Card, trump domain.Suit, beggingTeamScore int) bool {
	count, highest := trumpProfile(hand, trump)
	if count == 0 {
		return false // cannot legally give anyway
	}
	// A chalk given away counts double when the beggars are close to home.
	if beggingTeamScore >= 10 {
		return false
	}
	// Keep a strong trump hand; otherwise take a fresh shot at the pack.
	return count >= 3 || highest >= domain.King
}

func (b *GoodBot) ChooseCard(hand []domain.Card, lead, trump domain.Suit, played []domain.Card) int {
	legal := legalIndexes(hand, lead, trump, played)
	if len(legal) == 0 {
		return 0
	}

	lowest := legal[0]
	for _, i := range legal[1:] {
		if domain.Compare(hand[i], hand[lowest]) < 0 {
			lowest = i
		}
	}
	return lowest
}

// SmartBot extends GoodBot's negotiation but plays tricks to win: it takes
// the trick with the cheapest winning card when it can, and dumps the lowest
// non-counting card when it cannot.
type SmartBot struct {
	GoodBot
}

func (b *SmartBot) ChooseCard(hand []domain.Card, lead, trump domain.Suit, played []domain.Card) int {
	legal := legalIndexes(hand, lead, trump, played)
	if len(legal) == 0 {
		return 0
	}

	best, contested := currentBest(played, trump, lead)

	// Cheapest card that would currently win the trick.
	winIdx := -1
	for _, i := range legal {
		c := hand[i]
		if contested && !domain.IsWinningCard(c, best, trump, lead) {
			continue
		}
		if winIdx == -1 || domain.Compare(c, hand[winIdx]) < 0 {
			winIdx = i
		}
	}

	// Closing the trick and able to win: take it. Earlier in the trick only
	// contest with a counting card at stake or a cheap winner.
	if winIdx != -1 {
		if len(played) == 3 || trickValue(played) > 0 || hand[winIdx].Rank < domain.Ten {
			return winIdx
		}
	}

	// Otherwise shed the lowest legal card, preferring non-counters.
	dump := legal[0]
	for _, i := range legal[1:] {
		ci, cd := hand[i], hand[dump]
		if domain.GamePoints(ci.Rank) != domain.GamePoints(cd.Rank) {
			if domain.GamePoints(ci.Rank) < domain.GamePoints(cd.Rank) {
				dump = i
			}
			continue
		}
		if domain.Compare(ci, cd) < 0 {
			dump = i
		}
	}
	return dump
}

func trumpProfile(hand []domain.Card, trump domain.Suit) (count int, highest domain.Rank) {
	for _, c := range hand {
		if c.Suit != trump {
			continue
		}
		count++
		if c.Rank > highest {
			highest = c.Rank
		}
	}
	return count, highest
}

func trickValue(played []domain.Card) int {
	total := 0
	for _, c := range played {
		total += domain.GamePoints(c.Rank)
	}
	return total
}
