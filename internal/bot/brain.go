package bot

import "allfours/internal/domain"

// BotLevel selects an AI difficulty.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
)

// Brain is a bot decision strategy. Every method is pure with respect to the
// inputs; hands are never mutated.
type Brain interface {
	// DecideBeg decides beg (true) or stand (false) for the hand. Callers
	// still enforce the zero-trump stand restriction, but a well-behaved
	// brain begs on its own when it holds no trump.
	DecideBeg(hand []domain.Card, trump domain.Suit) bool

	// DecideGive decides, for a dealer facing a beg, whether to give one
	// chalk (true) or run the pack (false).
	DecideGive(hand []domain.Card, trump domain.Suit, beggingTeamScore int) bool

	// ChooseCard returns the index of the card to play from hand. The
	// returned index is always a legal play.
	ChooseCard(hand []domain.Card, lead, trump domain.Suit, played []domain.Card) int
}

// legalIndexes returns the hand indexes whose play would pass validation.
func legalIndexes(hand []domain.Card, lead, trump domain.Suit, played []domain.Card) []int {
	holder := &domain.Player{Hand: hand}
	var legal []int
	for i, c := range hand {
		if holder.ValidatePlay(c, lead, trump, played) == nil {
			legal = append(legal, i)
		}
	}
	return legal
}

// currentBest folds the played cards to the card currently winning the trick.
func currentBest(played []domain.Card, trump, lead domain.Suit) (domain.Card, bool) {
	if len(played) == 0 {
		return domain.Card{}, false
	}
	best := played[0]
	for _, c := range played[1:] {
		if domain.IsWinningCard(c, best, trump, lead) {
			best = c
		}
	}
	return best, true
}
