package domain

import (
	"context"
	"errors"
	"sort"
)

// Play-legality violations. These are recoverable: the caller re-prompts the
// same player and no state has changed.
var (
	ErrMustFollowSuit = errors.New("you must follow suit if you have it")
	ErrUndertrump     = errors.New("you cannot undertrump if you have other suits")
)

// Player holds a participant's identity and hand. The hand is owned by the
// player: other components read it but only mutate it through AddCard and
// RemoveCard.
type Player struct {
	ID   string
	Name string
	Hand []Card
}

// NewPlayer constructs a player with an empty hand.
func NewPlayer(name, id string) *Player {
	return &Player{ID: id, Name: name}
}

// AddCard appends a card to the hand.
func (p *Player) AddCard(c Card) {
	p.Hand = append(p.Hand, c)
}

// RemoveCard removes the first card equal to c from the hand. It reports
// false when no equal card is held; the hand is unchanged in that case.
func (p *Player) RemoveCard(c Card) bool {
	for i, held := range p.Hand {
		if held == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// SortHand orders the hand by suit name then rank, for display.
func (p *Player) SortHand() {
	sort.SliceStable(p.Hand, func(i, j int) bool {
		si, sj := p.Hand[i].Suit.String(), p.Hand[j].Suit.String()
		if si != sj {
			return si < sj
		}
		return Compare(p.Hand[i], p.Hand[j]) < 0
	})
}

// HasSuit reports whether the player holds at least one card of the suit.
func (p *Player) HasSuit(s Suit) bool {
	for _, c := range p.Hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// CountSuit returns how many cards of the suit the player holds.
func (p *Player) CountSuit(s Suit) int {
	n := 0
	for _, c := range p.Hand {
		if c.Suit == s {
			n++
		}
	}
	return n
}

// hasOtherSuit reports whether the player holds any card outside the suit.
func (p *Player) hasOtherSuit(s Suit) bool {
	for _, c := range p.Hand {
		if c.Suit != s {
			return true
		}
	}
	return false
}

// ValidatePlay checks whether playing card is legal for this player given
// the lead suit, trump suit and the cards already played this trick.
//
// Rules, in order:
//  1. The opening play of a trick (leadSuit == NoSuit) is always legal.
//  2. Must follow suit: a non-trump card off the lead suit is illegal while
//     the player still holds the lead suit. Trump is always exempt, so
//     trumping in early is legal even when the player could follow.
//  3. Undertrump: once trump is in on a non-trump lead, a lower trump than
//     the highest trump played is illegal unless the hand is all trump.
func (p *Player) ValidatePlay(card Card, leadSuit, trumpSuit Suit, playedCards []Card) error {
	if leadSuit == NoSuit {
		return nil
	}

	isTrump := card.Suit == trumpSuit

	if card.Suit != leadSuit && p.HasSuit(leadSuit) && !isTrump {
		return ErrMustFollowSuit
	}

	if leadSuit != trumpSuit && isTrump {
		highest, trumpPlayed := highestOfSuit(playedCards, trumpSuit)
		if trumpPlayed && Compare(card, highest) < 0 && p.hasOtherSuit(trumpSuit) {
			return ErrUndertrump
		}
	}

	return nil
}

// CardChooser is the slice of the game IO a player needs to pick a card
// interactively. Any GameIO implementation satisfies it.
type CardChooser interface {
	// PromptCard blocks until the player selects an index into hand.
	PromptCard(ctx context.Context, player *Player, hand []Card) (int, error)
	// RejectPlay delivers a rejection reason privately to the player.
	RejectPlay(player *Player, reason string)
}

// ChooseCardToPlay prompts the player until they pick a legal card, then
// removes it from the hand and returns it. Illegal choices are rejected
// privately and re-prompted. Only IO failures escape as errors.
func (p *Player) ChooseCardToPlay(ctx context.Context, leadSuit, trumpSuit Suit, playedCards []Card, io CardChooser) (Card, error) {
	for {
		idx, err := io.PromptCard(ctx, p, p.Hand)
		if err != nil {
			return Card{}, err
		}
		if idx < 0 || idx >= len(p.Hand) {
			io.RejectPlay(p, "invalid choice, try again")
			continue
		}

		selected := p.Hand[idx]
		if err := p.ValidatePlay(selected, leadSuit, trumpSuit, playedCards); err != nil {
			io.RejectPlay(p, err.Error())
			continue
		}

		p.RemoveCard(selected)
		return selected, nil
	}
}

// highestOfSuit returns the highest card of the suit among played, if any.
func highestOfSuit(played []Card, s Suit) (Card, bool) {
	var highest Card
	found := false
	for _, c := range played {
		if c.Suit != s {
			continue
		}
		if !found || Compare(c, highest) > 0 {
			highest = c
			found = true
		}
	}
	return highest, found
}
