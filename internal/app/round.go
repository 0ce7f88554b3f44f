package app

import (
	"context"
	"fmt"
	"math/rand"

	"allfours/internal/domain"
	"allfours/internal/ports"
)

// beggingResult is the outcome of the begging negotiation.
type beggingResult int

const (
	// begProceed continues into trick play with the (possibly new) trump.
	begProceed beggingResult = iota
	// begRestart signals the pack ran out with no trump change: re-deal the
	// whole round with the same dealer.
	begRestart
	// begAborted signals the pack-run safety bound was exceeded: hard abort.
	begAborted
	// begWon signals a team reached the chalk target on kick points.
	begWon
)

// Round orchestrates one full round of All Fours: deal, kick, the begging
// negotiation, trick play and end-of-round scoring. A Round is created per
// dealer turn; pack-exhaustion restarts replay the whole procedure inside
// the same Round rather than recursing.
type Round struct {
	io          ports.GameIO
	rng         *rand.Rand
	targetScore int

	players    []*domain.Player
	dealer     *domain.Player
	teamA      *domain.Team
	teamB      *domain.Team
	dealerTeam *domain.Team

	trumpSuit    domain.Suit
	aborted      bool
	teamRanJack  *domain.Team
	teamHungJack *domain.Team
	inBegging    bool
	beggar       *domain.Player

	deck         *domain.Deck
	currentTrick *domain.Trick

	highTrump trumpHolding
	lowTrump  trumpHolding

	teamAGamePoints int
	teamBGamePoints int
}

// trumpHolding records a trump card and its owner, frozen from hands at the
// moment trick play begins.
type trumpHolding struct {
	card   domain.Card
	player *domain.Player
	found  bool
}

// NewRound prepares a round for the given seating, dealer and teams. The
// players slice is the fixed table order; "to the right" means decreasing
// index with wraparound.
func NewRound(players []*domain.Player, dealer *domain.Player, teamA, teamB *domain.Team, io ports.GameIO, rng *rand.Rand, targetScore int) *Round {
	r := &Round{
		io:          io,
		rng:         rng,
		targetScore: targetScore,
		players:     players,
		dealer:      dealer,
		teamA:       teamA,
		teamB:       teamB,
		inBegging:   true,
	}
	r.dealerTeam = r.teamOf(dealer)
	return r
}

// Play runs the round to completion. Pack-exhaustion restarts loop here with
// a fresh shuffle and the same dealer instead of recursing. A nil return
// with Aborted() true means the caller must retry the round.
func (r *Round) Play(ctx context.Context) error {
	for {
		restart, err := r.playOnce(ctx)
		if err != nil {
			return err
		}
		if !restart {
			return nil
		}

		r.io.ShowMessage("Pack ran out...", ports.Both)
		r.io.ClearKickedCards()
		for _, p := range r.players {
			p.Hand = nil
		}
	}
}

// playOnce runs a single pass of the round procedure. restart is true only
// for the RESTART_ROUND continuation.
func (r *Round) playOnce(ctx context.Context) (restart bool, err error) {
	r.io.ShowMessage(fmt.Sprintf("Starting new round - %s is dealing...", r.dealer.Name), ports.Log)

	r.teamRanJack = nil
	r.teamHungJack = nil
	r.aborted = false
	r.inBegging = true

	r.teamA.ResetGameScore()
	r.teamB.ResetGameScore()
	r.io.ShowScores(r.teamA, r.teamB)

	r.deck = domain.NewDeck()
	r.deck.Shuffle(r.rng)

	r.io.ShowMessage(fmt.Sprintf("%s deals...", r.dealer.Name), ports.Log)
	if !r.deck.Deal(r.players, 6) {
		r.io.ShowMessage("Not enough cards to deal. Round aborting...", ports.Both)
		r.aborted = true
		return false, nil
	}

	kicked, ok := r.deck.Kick()
	if !ok {
		r.io.ShowMessage("No card to kick. Round aborting...", ports.Both)
		r.aborted = true
		return false, nil
	}
	r.trumpSuit = kicked.Suit
	r.io.ShowKickedCard(kicked)

	r.awardKickPoints(kicked)
	if r.isGameWon() {
		return false, nil
	}

	r.beggar = r.playerToRight(r.dealer)
	r.io.ShowPlayerHands(r.players, r.handContext())

	r.io.ShowMessage("Begging phase", ports.Log)
	result, err := r.runBegging(ctx)
	if err != nil {
		return false, err
	}

	switch result {
	case begRestart:
		return true, nil
	case begAborted:
		r.io.ShowMessage("Round will restart due to insufficient cards to run the pack.", ports.Log)
		r.aborted = true
		return false, nil
	case begWon:
		return false, nil
	}

	// Hands may have grown during a pack run.
	r.io.ShowPlayerHands(r.players, r.handContext())

	r.io.ShowMessage("Starting trick playing phase...", ports.Log)
	r.inBegging = false
	r.io.ShowPlayerHands(r.players, r.handContext())

	if err := r.playAllTricks(ctx); err != nil {
		return false, err
	}

	r.allocateEndOfRoundPoints()

	r.io.ShowMessage("Round completed.", ports.Log)
	return false, nil
}

// runBegging plays out the beg/stand decision and, when begged, the dealer's
// give-one/run-pack response.
func (r *Round) runBegging(ctx context.Context) (beggingResult, error) {
	beggingPlayer := r.beggar
	r.io.ShowMessage(fmt.Sprintf("Current trump: %s", r.trumpSuit), ports.Log)

	beggarTrumpCount := beggingPlayer.CountSuit(r.trumpSuit)

	for {
		resp, err := r.io.PromptPlayer(ctx, beggingPlayer, "do you want to beg?", ports.PromptOptions{YesText: "Beg", NoText: "Stand"})
		if err != nil {
			return 0, err
		}

		yes, ok := ports.ParseYesNo(resp)
		if !ok {
			r.io.ShowMessage("Please answer 'yes' to beg or 'no' to stand.", ports.Private(beggingPlayer.ID))
			continue
		}
		if yes {
			break
		}

		// Standing with zero trump is illegal; the beggar must beg.
		if beggarTrumpCount == 0 {
			r.io.ShowMessage(fmt.Sprintf("%s cannot stand with zero trump cards!", beggingPlayer.Name), ports.Private(beggingPlayer.ID))
			continue
		}

		r.io.ShowMessage(fmt.Sprintf("%s stands", beggingPlayer.Name), ports.Both)
		return begProceed, nil
	}

	r.io.ShowMessage(fmt.Sprintf("%s begs!", beggingPlayer.Name), ports.Both)
	beggingTeam := r.teamOf(beggingPlayer)

	if beggingTeam.MatchScore() >= r.targetScore-1 {
		// Giving one chalk would hand the begging team the match, so the
		// dealer is not even offered the choice.
		r.io.ShowMessage(fmt.Sprintf("%s has %d points.", beggingTeam.Name, beggingTeam.MatchScore()), ports.Log)
		r.io.ShowMessage(fmt.Sprintf("%s cannot give 1 chalk (would win the game for opponents).", r.dealer.Name), ports.Private(r.dealer.ID))
		r.io.ShowMessage(fmt.Sprintf("%s is forced to run the pack!", r.dealer.Name), ports.Log)
	} else {
		dealerTrumpCount := r.dealer.CountSuit(r.trumpSuit)

		for {
			resp, err := r.io.PromptPlayer(ctx, r.dealer,
				fmt.Sprintf("do you want to give 1 chalk to %s?", beggingTeam.Name),
				ports.PromptOptions{YesText: "Give 1", NoText: "Run Pack"})
			if err != nil {
				return 0, err
			}

			yes, ok := ports.ParseYesNo(resp)
			if !ok {
				r.io.ShowMessage("Please answer 'yes' to give 1 chalk or 'no' to run the pack.", ports.Private(r.dealer.ID))
				continue
			}
			if !yes {
				break
			}

			// Same zero-trump restriction as standing, mirrored.
			if dealerTrumpCount == 0 {
				r.io.ShowMessage(fmt.Sprintf("%s cannot give 1 chalk with zero trump cards!", r.dealer.Name), ports.Both)
				continue
			}

			beggingTeam.AddChalk(1)
			r.io.ShowMessage(fmt.Sprintf("%s gives 1 chalk to %s.", r.dealer.Name, beggingTeam.Name), ports.Both)
			r.io.ShowMessage(fmt.Sprintf("%s score: %d", beggingTeam.Name, beggingTeam.MatchScore()), ports.Log)
			r.io.ShowScores(r.teamA, r.teamB)
			return begProceed, nil
		}
	}

	r.io.ShowMessage(fmt.Sprintf("%s is running the pack...", r.dealer.Name), ports.Both)
	return r.runPack()
}

// runPack re-deals and re-kicks until the trump suit changes or the pack
// runs out, with a safety bound on iterations.
func (r *Round) runPack() (beggingResult, error) {
	const maxAttempts = 10

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		r.io.ShowMessage(fmt.Sprintf("Running pack (attempt %d)...", attempt), ports.Log)
		r.io.ShowMessage(fmt.Sprintf("Cards remaining in deck: %d", r.deck.CardsRemaining()), ports.Log)

		if r.deck.CardsRemaining() < 1 {
			r.io.ShowMessage("No cards left to kick. Pack has run out!", ports.Both)
			return begRestart, nil
		}

		// Deal 3 more to everyone when a full deal plus a kick fits;
		// otherwise skip the deal and kick what is left.
		cardsNeededToDeal := len(r.players) * 3
		if r.deck.CardsRemaining() >= cardsNeededToDeal+1 {
			if !r.deck.Deal(r.players, 3) {
				r.io.ShowMessage("Unexpected error: deal failed despite having enough cards.", ports.Log)
				return begRestart, nil
			}
		} else {
			r.io.ShowMessage(fmt.Sprintf("Only %d card(s) left - cannot deal but will kick first", r.deck.CardsRemaining()), ports.Log)
		}

		kicked, ok := r.deck.Kick()
		if !ok {
			r.io.ShowMessage("No card available to kick. Pack has run out!", ports.Log)
			return begRestart, nil
		}

		newTrump := kicked.Suit
		r.io.ShowKickedCard(kicked)
		r.io.ShowMessage(fmt.Sprintf("New trump suit: %s", newTrump), ports.Log)

		r.awardKickPoints(kicked)
		if r.isGameWon() {
			return begWon, nil
		}

		if newTrump != r.trumpSuit {
			r.io.ShowMessage(fmt.Sprintf("Trump changed from %s to %s!", r.trumpSuit, newTrump), ports.Log)
			r.trumpSuit = newTrump
			return begProceed, nil
		}

		r.io.ShowMessage(fmt.Sprintf("Same trump suit (%s).", r.trumpSuit), ports.Log)

		if r.deck.CardsRemaining() == 0 {
			r.io.ShowMessage("Same trump and no more cards available. Pack has run out!", ports.Both)
			r.io.ShowMessage("Starting new round with the same dealer.", ports.Both)
			return begRestart, nil
		}

		if r.deck.CardsRemaining() >= cardsNeededToDeal+1 {
			r.io.ShowMessage("Same trump but enough cards remain. Running pack again...", ports.Both)
		} else {
			r.io.ShowMessage(fmt.Sprintf("Same trump but only %d card(s) left. Will kick remaining card...", r.deck.CardsRemaining()), ports.Log)
		}
	}

	r.io.ShowMessage("Maximum pack running attempts reached. Aborting round.", ports.Log)
	return begAborted, nil
}

// playAllTricks freezes the High/Low trump holdings, then plays one trick
// per card held, accumulating game points to the winning teams.
func (r *Round) playAllTricks(ctx context.Context) error {
	r.highTrump = r.findHighTrump()
	r.lowTrump = r.findLowTrump()
	r.teamAGamePoints = 0
	r.teamBGamePoints = 0

	totalTricks := len(r.players[0].Hand)
	r.io.ShowMessage(fmt.Sprintf("Each player has %d cards", totalTricks), ports.Log)
	r.io.ShowMessage(fmt.Sprintf("Playing %d tricks this round", totalTricks), ports.Log)

	leader := r.playerToRight(r.dealer)

	for trickNumber := 1; trickNumber <= totalTricks; trickNumber++ {
		r.io.ShowMessage(fmt.Sprintf("Trick %d of %d", trickNumber, totalTricks), ports.Log)
		r.io.ShowMessage(fmt.Sprintf("%s leads this trick", leader.Name), ports.Log)

		trick := domain.NewTrick(r.players, r.trumpSuit, leader)
		r.currentTrick = trick
		if err := r.playTrick(ctx, trick); err != nil {
			return err
		}

		winner := trick.Winner()
		points := trick.PointsEarned()

		if trick.JackPlayed() && r.teamRanJack == nil && r.teamHungJack == nil {
			jackTeam := r.teamOf(trick.JackPlayer())
			winningTeam := r.teamOf(winner)
			if jackTeam == winningTeam {
				r.teamRanJack = jackTeam
				r.io.ShowMessage(fmt.Sprintf("JACK RUN: %s won the Jack of %s", jackTeam.Name, r.trumpSuit), ports.Both)
			} else {
				r.teamHungJack = winningTeam
				r.io.ShowMessage(fmt.Sprintf("JACK HUNG: %s hung the Jack of %s", winningTeam.Name, r.trumpSuit), ports.Both)
			}
		}

		winningTeam := r.teamOf(winner)
		if winningTeam == r.teamA {
			r.teamAGamePoints += points
		} else {
			r.teamBGamePoints += points
		}
		winningTeam.AddGamePoints(points)

		r.io.ShowMessage(fmt.Sprintf("Trick %d winner: %s", trickNumber, winner.Name), ports.Log)
		r.io.ShowMessage(fmt.Sprintf("Points earned: %d", points), ports.Log)
		r.io.ShowScores(r.teamA, r.teamB)

		leader = winner

		if remaining := len(r.players[0].Hand); remaining > 0 {
			r.io.ShowMessage(fmt.Sprintf("%d cards remaining per player", remaining), ports.Log)
		}
	}

	r.currentTrick = nil
	r.io.ShowMessage(fmt.Sprintf("All %d tricks completed!", totalTricks), ports.Log)
	return nil
}

// playTrick drives one trick to completion, re-prompting the same player on
// every illegal play. Only IO failures abort the round.
func (r *Round) playTrick(ctx context.Context, trick *domain.Trick) error {
	for !trick.IsComplete() {
		current := trick.CurrentPlayer()
		r.io.SetActivePlayer(current.ID)
		r.io.ShowTrickState(trick.PlayedCards())

		idx, err := r.io.PromptCard(ctx, current, current.Hand)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(current.Hand) {
			r.io.RejectPlay(current, "invalid choice, try again")
			continue
		}

		chosen := current.Hand[idx]
		if err := trick.PlayCard(chosen, current); err != nil {
			r.io.RejectPlay(current, err.Error())
			continue
		}

		r.io.ShowMessage(fmt.Sprintf("%s plays %s", current.Name, chosen), ports.Log)
		r.io.ShowTrickState(trick.PlayedCards())
		r.io.ShowPlayerHands(r.players, r.handContext())
	}

	r.io.ShowTrickState(trick.PlayedCards())
	r.io.ShowTrickState(nil) // clear the trick area for the next trick
	return nil
}

// allocateEndOfRoundPoints awards High, Low, Jack and Game in that order,
// stopping as soon as a team reaches the chalk target.
func (r *Round) allocateEndOfRoundPoints() {
	r.io.ShowMessage("End of round - point allocation", ports.Log)

	if r.highTrump.found {
		team := r.teamOf(r.highTrump.player)
		team.AddChalk(1)
		r.io.ShowMessage(fmt.Sprintf("HIGH: %s wins 1 point for %s", team.Name, r.highTrump.card), ports.Both)
		r.io.ShowScores(r.teamA, r.teamB)
		if r.isGameWon() {
			return
		}
	} else {
		r.io.ShowMessage("HIGH: no trump cards held", ports.Both)
	}

	if r.lowTrump.found {
		team := r.teamOf(r.lowTrump.player)
		team.AddChalk(1)
		r.io.ShowMessage(fmt.Sprintf("LOW: %s wins 1 point for %s", team.Name, r.lowTrump.card), ports.Both)
		r.io.ShowScores(r.teamA, r.teamB)
		if r.isGameWon() {
			return
		}
	} else {
		r.io.ShowMessage("LOW: no trump cards held", ports.Both)
	}

	if jackTeam, points := r.jackAward(); jackTeam != nil {
		jackTeam.AddChalk(points)
		r.io.ShowMessage(fmt.Sprintf("JACK: %s wins %d point(s) for the Jack of %s", jackTeam.Name, points, r.trumpSuit), ports.Both)
		r.io.ShowScores(r.teamA, r.teamB)
		if r.isGameWon() {
			return
		}
	} else {
		r.io.ShowMessage(fmt.Sprintf("JACK: the Jack of %s was not played", r.trumpSuit), ports.Log)
	}

	if gameTeam, tied := r.gameAward(); gameTeam != nil {
		gameTeam.AddChalk(2)
		reason := ""
		if tied {
			reason = " (won tiebreaker as non-dealer team)"
		}
		r.io.ShowMessage(fmt.Sprintf("GAME: %s wins 2 points%s", gameTeam.Name, reason), ports.Both)
		r.io.ShowMessage(fmt.Sprintf("Game point totals: %s=%d, %s=%d",
			r.teamA.Name, r.teamAGamePoints, r.teamB.Name, r.teamBGamePoints), ports.Log)
		r.io.ShowScores(r.teamA, r.teamB)
		if r.isGameWon() {
			return
		}
	} else {
		r.io.ShowMessage("GAME: no game points earned", ports.Both)
	}

	r.io.ShowScores(r.teamA, r.teamB)
}

// jackAward resolves the Jack category: 3 chalk for hanging, 1 for running,
// nothing when the Jack of trump was never played.
func (r *Round) jackAward() (*domain.Team, int) {
	if r.teamHungJack != nil {
		return r.teamHungJack, 3
	}
	if r.teamRanJack != nil {
		return r.teamRanJack, 1
	}
	return nil, 0
}

// gameAward resolves the Game category. On an exact tie above zero the
// non-dealer team takes it; a 0-0 tie awards nothing.
func (r *Round) gameAward() (team *domain.Team, tied bool) {
	switch {
	case r.teamAGamePoints > r.teamBGamePoints:
		return r.teamA, false
	case r.teamBGamePoints > r.teamAGamePoints:
		return r.teamB, false
	case r.teamAGamePoints > 0:
		if r.dealerTeam == r.teamA {
			return r.teamB, true
		}
		return r.teamA, true
	default:
		return nil, false
	}
}

// awardKickPoints gives the dealer's team chalk for the kicked card.
func (r *Round) awardKickPoints(kicked domain.Card) {
	points := domain.KickPoints(kicked.Rank)
	if points == 0 {
		return
	}

	r.dealerTeam.AddChalk(points)
	r.io.ShowMessage(fmt.Sprintf("%s earned %d kick point(s) from kicking %s", r.dealerTeam.Name, points, kicked), ports.Both)
	r.io.ShowMessage(fmt.Sprintf("%s score: %d", r.dealerTeam.Name, r.dealerTeam.MatchScore()), ports.Log)
	r.io.ShowScores(r.teamA, r.teamB)

	if r.dealerTeam.MatchScore() >= r.targetScore {
		r.io.ShowMessage(fmt.Sprintf("%s kicks out the game!", r.dealer.Name), ports.Both)
	}
}

// isGameWon reports whether either team has reached the chalk target,
// announcing the winner when so. It runs after every chalk award; once it
// returns true no further scoring category is evaluated.
func (r *Round) isGameWon() bool {
	for _, team := range []*domain.Team{r.teamA, r.teamB} {
		if team.MatchScore() >= r.targetScore {
			r.io.ShowMessage(fmt.Sprintf("%s wins the game with %d points!", team.Name, team.MatchScore()), ports.Both)
			return true
		}
	}
	return false
}

// findHighTrump returns the highest trump card held by anyone.
func (r *Round) findHighTrump() trumpHolding {
	var h trumpHolding
	for _, p := range r.players {
		for _, c := range p.Hand {
			if c.Suit != r.trumpSuit {
				continue
			}
			if !h.found || domain.Compare(c, h.card) > 0 {
				h = trumpHolding{card: c, player: p, found: true}
			}
		}
	}
	return h
}

// findLowTrump returns the lowest trump card held by anyone.
func (r *Round) findLowTrump() trumpHolding {
	var h trumpHolding
	for _, p := range r.players {
		for _, c := range p.Hand {
			if c.Suit != r.trumpSuit {
				continue
			}
			if !h.found || domain.Compare(c, h.card) < 0 {
				h = trumpHolding{card: c, player: p, found: true}
			}
		}
	}
	return h
}

func (r *Round) handContext() ports.HandContext {
	return ports.HandContext{
		BeggingPhase: r.inBegging,
		Beggar:       r.beggar,
		Dealer:       r.dealer,
	}
}

// playerToRight returns the player counter-clockwise from p.
func (r *Round) playerToRight(p *domain.Player) *domain.Player {
	for i, candidate := range r.players {
		if candidate == p {
			return r.players[domain.SeatToRight(i, len(r.players))]
		}
	}
	return nil
}

// teamOf returns the team the player belongs to.
func (r *Round) teamOf(p *domain.Player) *domain.Team {
	if r.teamA.HasPlayer(p) {
		return r.teamA
	}
	return r.teamB
}

// TrumpSuit returns the trump suit currently in effect.
func (r *Round) TrumpSuit() domain.Suit {
	return r.trumpSuit
}

// Aborted reports whether the round ended without completing; the caller
// retries with the same dealer.
func (r *Round) Aborted() bool {
	return r.aborted
}

// Beggar returns the player to the dealer's right, once dealing has happened.
func (r *Round) Beggar() *domain.Player {
	return r.beggar
}

// CurrentTrick returns the trick in progress, or nil outside trick play.
func (r *Round) CurrentTrick() *domain.Trick {
	return r.currentTrick
}
