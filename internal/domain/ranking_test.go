package domain

import "testing"

func TestIsWinningCard(t *testing.T) {
	tests := []struct {
		name      string
		candidate Card
		best      Card
		trump     Suit
		lead      Suit
		expected  bool
	}{
		{
			name:      "trump beats non-trump regardless of rank",
			candidate: Card{Suit: Spades, Rank: Two},
			best:      Card{Suit: Hearts, Rank: Ace},
			trump:     Spades,
			lead:      Hearts,
			expected:  true,
		},
		{
			name:      "non-trump never beats trump",
			candidate: Card{Suit: Hearts, Rank: Ace},
			best:      Card{Suit: Spades, Rank: Two},
			trump:     Spades,
			lead:      Hearts,
			expected:  false,
		},
		{
			name:      "higher trump beats lower trump",
			candidate: Card{Suit: Spades, Rank: Queen},
			best:      Card{Suit: Spades, Rank: Ten},
			trump:     Spades,
			lead:      Hearts,
			expected:  true,
		},
		{
			name:      "lead suit beats off-suit",
			candidate: Card{Suit: Hearts, Rank: Three},
			best:      Card{Suit: Diamonds, Rank: King},
			trump:     Spades,
			lead:      Hearts,
			expected:  true,
		},
		{
			name:      "off-suit never beats lead suit",
			candidate: Card{Suit: Diamonds, Rank: King},
			best:      Card{Suit: Hearts, Rank: Three},
			trump:     Spades,
			lead:      Hearts,
			expected:  false,
		},
		{
			name:      "higher lead beats lower lead",
			candidate: Card{Suit: Hearts, Rank: King},
			best:      Card{Suit: Hearts, Rank: Seven},
			trump:     Spades,
			lead:      Hearts,
			expected:  true,
		},
		{
			name:      "equal rank same suit does not displace the holder",
			candidate: Card{Suit: Hearts, Rank: Seven},
			best:      Card{Suit: Hearts, Rank: Seven},
			trump:     Spades,
			lead:      Hearts,
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsWinningCard(tt.candidate, tt.best, tt.trump, tt.lead)
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestGamePoints(t *testing.T) {
	tests := []struct {
		rank     Rank
		expected int
	}{
		{Ace, 4},
		{King, 3},
		{Queen, 2},
		{Jack, 1},
		{Ten, 10},
		{Nine, 0},
		{Two, 0},
	}
	for _, tt := range tests {
		if got := GamePoints(tt.rank); got != tt.expected {
			t.Errorf("GamePoints(%s): expected %d, got %d", tt.rank, tt.expected, got)
		}
	}
}

func TestKickPoints(t *testing.T) {
	tests := []struct {
		rank     Rank
		expected int
	}{
		{Ace, 1},
		{Six, 2},
		{Jack, 3},
		{King, 0},
		{Ten, 0},
	}
	for _, tt := range tests {
		if got := KickPoints(tt.rank); got != tt.expected {
			t.Errorf("KickPoints(%s): expected %d, got %d", tt.rank, tt.expected, got)
		}
	}
}

func TestSeatToRight(t *testing.T) {
	tests := []struct {
		seat     int
		expected int
	}{
		{0, 3},
		{1, 0},
		{2, 1},
		{3, 2},
	}
	for _, tt := range tests {
		if got := SeatToRight(tt.seat, 4); got != tt.expected {
			t.Errorf("SeatToRight(%d, 4): expected %d, got %d", tt.seat, tt.expected, got)
		}
	}

	// Four applications walk the whole table back to the start.
	seat := 2
	for i := 0; i < 4; i++ {
		seat = SeatToRight(seat, 4)
	}
	if seat != 2 {
		t.Errorf("expected full rotation to return to seat 2, got %d", seat)
	}
}
