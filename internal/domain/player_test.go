package domain

import (
	"context"
	"errors"
	"testing"
)

func TestRemoveCard(t *testing.T) {
	p := NewPlayer("A", "a")
	p.AddCard(Card{Suit: Hearts, Rank: Five})
	p.AddCard(Card{Suit: Spades, Rank: Ten})

	if !p.RemoveCard(Card{Suit: Hearts, Rank: Five}) {
		t.Error("expected RemoveCard to find the held card")
	}
	if len(p.Hand) != 1 {
		t.Errorf("expected 1 card left, got %d", len(p.Hand))
	}
	if p.RemoveCard(Card{Suit: Hearts, Rank: Five}) {
		t.Error("expected RemoveCard to fail on an absent card")
	}
	if len(p.Hand) != 1 {
		t.Errorf("failed removal changed the hand: %d cards", len(p.Hand))
	}
}

func TestValidatePlay(t *testing.T) {
	tests := []struct {
		name     string
		hand     []Card
		card     Card
		lead     Suit
		trump    Suit
		played   []Card
		expected error
	}{
		{
			name:     "opening play is always legal",
			hand:     []Card{{Suit: Hearts, Rank: Two}},
			card:     Card{Suit: Hearts, Rank: Two},
			lead:     NoSuit,
			trump:    Spades,
			expected: nil,
		},
		{
			name:     "must follow suit when holding it",
			hand:     []Card{{Suit: Hearts, Rank: Nine}, {Suit: Clubs, Rank: Four}},
			card:     Card{Suit: Clubs, Rank: Four},
			lead:     Hearts,
			trump:    Spades,
			expected: ErrMustFollowSuit,
		},
		{
			name:     "off-suit legal when void of lead",
			hand:     []Card{{Suit: Clubs, Rank: Four}, {Suit: Diamonds, Rank: Nine}},
			card:     Card{Suit: Clubs, Rank: Four},
			lead:     Hearts,
			trump:    Spades,
			expected: nil,
		},
		{
			name:     "trump is exempt from following suit",
			hand:     []Card{{Suit: Hearts, Rank: Nine}, {Suit: Spades, Rank: Four}},
			card:     Card{Suit: Spades, Rank: Four},
			lead:     Hearts,
			trump:    Spades,
			expected: nil,
		},
		{
			name:     "undertrump forbidden with other suits in hand",
			hand:     []Card{{Suit: Spades, Rank: Three}, {Suit: Clubs, Rank: Nine}},
			card:     Card{Suit: Spades, Rank: Three},
			lead:     Hearts,
			trump:    Spades,
			played:   []Card{{Suit: Hearts, Rank: King}, {Suit: Spades, Rank: Eight}},
			expected: ErrUndertrump,
		},
		{
			name:     "undertrump allowed with an all-trump hand",
			hand:     []Card{{Suit: Spades, Rank: Three}, {Suit: Spades, Rank: Five}},
			card:     Card{Suit: Spades, Rank: Three},
			lead:     Hearts,
			trump:    Spades,
			played:   []Card{{Suit: Hearts, Rank: King}, {Suit: Spades, Rank: Eight}},
			expected: nil,
		},
		{
			name:     "overtrumping is legal",
			hand:     []Card{{Suit: Spades, Rank: Queen}, {Suit: Clubs, Rank: Nine}},
			card:     Card{Suit: Spades, Rank: Queen},
			lead:     Hearts,
			trump:    Spades,
			played:   []Card{{Suit: Hearts, Rank: King}, {Suit: Spades, Rank: Eight}},
			expected: nil,
		},
		{
			name:     "low trump legal when no trump played yet",
			hand:     []Card{{Suit: Spades, Rank: Two}, {Suit: Clubs, Rank: Nine}},
			card:     Card{Suit: Spades, Rank: Two},
			lead:     Hearts,
			trump:    Spades,
			played:   []Card{{Suit: Hearts, Rank: King}},
			expected: nil,
		},
		{
			name:     "undertrump rule does not apply on a trump lead",
			hand:     []Card{{Suit: Spades, Rank: Two}, {Suit: Clubs, Rank: Nine}},
			card:     Card{Suit: Spades, Rank: Two},
			lead:     Spades,
			trump:    Spades,
			played:   []Card{{Suit: Spades, Rank: King}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{ID: "p", Name: "P", Hand: tt.hand}
			err := p.ValidatePlay(tt.card, tt.lead, tt.trump, tt.played)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

// scriptedChooser feeds a fixed sequence of indexes and records rejections.
type scriptedChooser struct {
	indexes    []int
	next       int
	rejections []string
}

func (s *scriptedChooser) PromptCard(ctx context.Context, player *Player, hand []Card) (int, error) {
	if s.next >= len(s.indexes) {
		return 0, errors.New("script exhausted")
	}
	idx := s.indexes[s.next]
	s.next++
	return idx, nil
}

func (s *scriptedChooser) RejectPlay(player *Player, reason string) {
	s.rejections = append(s.rejections, reason)
}

func TestChooseCardToPlayRepromptsOnIllegal(t *testing.T) {
	p := &Player{ID: "p", Name: "P", Hand: []Card{
		{Suit: Hearts, Rank: Nine},
		{Suit: Clubs, Rank: Four},
	}}

	// First picks the club (must follow hearts), then out of range, then the heart.
	chooser := &scriptedChooser{indexes: []int{1, 5, 0}}

	card, err := p.ChooseCardToPlay(context.Background(), Hearts, Spades, nil, chooser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card != (Card{Suit: Hearts, Rank: Nine}) {
		t.Errorf("expected Nine of Hearts, got %s", card)
	}
	if len(chooser.rejections) != 2 {
		t.Errorf("expected 2 rejections, got %d: %v", len(chooser.rejections), chooser.rejections)
	}
	if len(p.Hand) != 1 {
		t.Errorf("expected chosen card removed from hand, got %d cards", len(p.Hand))
	}
}

func TestSortHandGroupsBySuit(t *testing.T) {
	p := NewPlayer("A", "a")
	p.AddCard(Card{Suit: Spades, Rank: Two})
	p.AddCard(Card{Suit: Clubs, Rank: Ace})
	p.AddCard(Card{Suit: Spades, Rank: King})
	p.AddCard(Card{Suit: Clubs, Rank: Three})
	p.SortHand()

	expected := []Card{
		{Suit: Clubs, Rank: Three},
		{Suit: Clubs, Rank: Ace},
		{Suit: Spades, Rank: Two},
		{Suit: Spades, Rank: King},
	}
	for i, c := range expected {
		if p.Hand[i] != c {
			t.Errorf("position %d: expected %s, got %s", i, c, p.Hand[i])
		}
	}
}

func TestCountSuit(t *testing.T) {
	p := NewPlayer("A", "a")
	p.AddCard(Card{Suit: Hearts, Rank: Two})
	p.AddCard(Card{Suit: Hearts, Rank: Nine})
	p.AddCard(Card{Suit: Clubs, Rank: Five})

	if got := p.CountSuit(Hearts); got != 2 {
		t.Errorf("expected 2 hearts, got %d", got)
	}
	if got := p.CountSuit(Diamonds); got != 0 {
		t.Errorf("expected 0 diamonds, got %d", got)
	}
	if !p.HasSuit(Clubs) {
		t.Error("expected HasSuit(Clubs) to be true")
	}
	if p.HasSuit(Spades) {
		t.Error("expected HasSuit(Spades) to be false")
	}
}
