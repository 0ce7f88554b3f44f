package domain

import "math/rand"

// Deck is an ordered pile of cards consumed from the front. A fresh deck
// holds all 52 distinct cards; within a round its size only decreases via
// Deal and Kick. Pack-run iterations keep depleting the same deck rather
// than building a new one.
type Deck struct {
	cards []Card
}

// NewDeck returns an ordered 52-card deck.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for _, s := range AllSuits() {
		for _, r := range AllRanks() {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return &Deck{cards: cards}
}

// Shuffle permutes the deck uniformly at random.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes n cards from the front for each player in order (player 0
// receives the first n) and sorts each hand. All-or-nothing: if fewer than
// n*len(players) cards remain, nothing moves and Deal reports false.
func (d *Deck) Deal(players []*Player, n int) bool {
	if n*len(players) > len(d.cards) {
		return false
	}

	for _, p := range players {
		for i := 0; i < n; i++ {
			p.AddCard(d.cards[0])
			d.cards = d.cards[1:]
		}
		p.SortHand()
	}
	return true
}

// Kick removes and returns the front card. The second return is false when
// the deck is empty.
func (d *Deck) Kick() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// CardsRemaining returns the number of cards left in the deck.
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}
