package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"allfours/internal/domain"
	"allfours/internal/ports"
)

// DefaultTargetScore is the chalk total that wins a standard match.
const DefaultTargetScore = 14

var (
	// ErrWrongPlayerCount is returned when player data is not exactly four entries.
	ErrWrongPlayerCount = errors.New("all fours needs exactly four players")
	// ErrBadTeamAssignment is returned when team assignments do not cover the players.
	ErrBadTeamAssignment = errors.New("team assignments do not match player data")
)

// PlayerData identifies one participant joining a match.
type PlayerData struct {
	PlayerID   string
	PlayerName string
}

// TeamAssignments lists the player ids on each team, in any order.
type TeamAssignments struct {
	Team1 [2]string
	Team2 [2]string
}

// Controller runs a whole match: seating and team setup, dealer rotation,
// and rounds until a team reaches the chalk target.
type Controller struct {
	io  ports.GameIO
	rng *rand.Rand

	players     []*domain.Player
	teamA       *domain.Team
	teamB       *domain.Team
	dealerIndex int
	targetScore int

	currentRound *Round
}

// NewController constructs a match controller. rng may be nil for a
// time-seeded default; playerData may be nil for default local names;
// assignments may be nil to pair seats 0&2 and 1&3.
func NewController(io ports.GameIO, rng *rand.Rand, playerData []PlayerData, assignments *TeamAssignments) (*Controller, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Controller{
		io:          io,
		rng:         rng,
		targetScore: DefaultTargetScore,
	}

	if err := c.setupPlayers(playerData, assignments); err != nil {
		return nil, err
	}
	c.setupTeams()

	c.dealerIndex = c.rng.Intn(len(c.players))

	return c, nil
}

// SetTargetScore overrides the winning chalk total before the match starts.
func (c *Controller) SetTargetScore(target int) {
	if target > 0 {
		c.targetScore = target
	}
}

// setupPlayers builds the seating order. With team assignments, players are
// arranged so teammates sit opposite each other (seats 0&2 and 1&3).
func (c *Controller) setupPlayers(playerData []PlayerData, assignments *TeamAssignments) error {
	if playerData == nil {
		playerData = []PlayerData{
			{PlayerID: "P1", PlayerName: "Player 1"},
			{PlayerID: "P2", PlayerName: "Player 2"},
			{PlayerID: "P3", PlayerName: "Player 3"},
			{PlayerID: "P4", PlayerName: "Player 4"},
		}
	}
	if len(playerData) != 4 {
		return fmt.Errorf("%w: got %d", ErrWrongPlayerCount, len(playerData))
	}

	byID := make(map[string]PlayerData, len(playerData))
	for _, pd := range playerData {
		byID[pd.PlayerID] = pd
	}

	arranged := playerData
	if assignments != nil {
		arranged = make([]PlayerData, 0, 4)
		for i := 0; i < 2; i++ {
			for _, id := range []string{assignments.Team1[i], assignments.Team2[i]} {
				pd, ok := byID[id]
				if !ok {
					return fmt.Errorf("%w: unknown player id %q", ErrBadTeamAssignment, id)
				}
				arranged = append(arranged, pd)
			}
		}
	}

	c.players = make([]*domain.Player, 0, 4)
	for _, pd := range arranged {
		c.players = append(c.players, domain.NewPlayer(pd.PlayerName, pd.PlayerID))
	}
	return nil
}

// setupTeams pairs opposite seats: 0&2 against 1&3.
func (c *Controller) setupTeams() {
	c.teamA = domain.NewTeam("Team A", c.players[0], c.players[2])
	c.teamB = domain.NewTeam("Team B", c.players[1], c.players[3])
}

// Players returns the fixed seating order.
func (c *Controller) Players() []*domain.Player {
	return c.players
}

// TeamA returns the first team (seats 0 and 2).
func (c *Controller) TeamA() *domain.Team {
	return c.teamA
}

// TeamB returns the second team (seats 1 and 3).
func (c *Controller) TeamB() *domain.Team {
	return c.teamB
}

// CurrentDealer returns the player dealing the current or next round.
func (c *Controller) CurrentDealer() *domain.Player {
	return c.players[c.dealerIndex]
}

// CurrentRound returns the round in progress, or nil between rounds.
func (c *Controller) CurrentRound() *Round {
	return c.currentRound
}

// IsMatchOver reports whether either team has reached the chalk target.
func (c *Controller) IsMatchOver() bool {
	return c.WinningTeam() != nil
}

// WinningTeam returns the team at or past the chalk target, or nil.
func (c *Controller) WinningTeam() *domain.Team {
	if c.teamA.MatchScore() >= c.targetScore {
		return c.teamA
	}
	if c.teamB.MatchScore() >= c.targetScore {
		return c.teamB
	}
	return nil
}

// rotateDealer passes the deal counter-clockwise. Only completed rounds
// rotate; an aborted round keeps the same dealer.
func (c *Controller) rotateDealer() {
	c.dealerIndex = domain.SeatToRight(c.dealerIndex, len(c.players))
	c.io.ShowMessage(fmt.Sprintf("Dealer passes to: %s", c.CurrentDealer().Name), ports.Log)
}

// playRound plays one round, reporting whether it completed. An IO failure
// is surfaced as a not-completed round (logged, same dealer keeps dealing).
func (c *Controller) playRound(ctx context.Context) (bool, error) {
	dealer := c.CurrentDealer()
	c.currentRound = NewRound(c.players, dealer, c.teamA, c.teamB, c.io, c.rng, c.targetScore)

	c.teamA.ResetGameScore()
	c.teamB.ResetGameScore()

	if err := c.currentRound.Play(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		c.io.ShowMessage(fmt.Sprintf("Round failed: %v", err), ports.Log)
		return false, nil
	}
	return !c.currentRound.Aborted(), nil
}

// PlayMatch announces setup and plays rounds until a team wins, returning
// the winning team.
func (c *Controller) PlayMatch(ctx context.Context) (*domain.Team, error) {
	c.io.ShowMessage(fmt.Sprintf("Match setup complete. %s is the first dealer.", c.CurrentDealer().Name), ports.Log)
	c.io.ShowMessage(fmt.Sprintf("%s: %s & %s", c.teamA.Name, c.teamA.Player1.Name, c.teamA.Player2.Name), ports.Log)
	c.io.ShowMessage(fmt.Sprintf("%s: %s & %s", c.teamB.Name, c.teamB.Player1.Name, c.teamB.Player2.Name), ports.Log)

	roundNumber := 1
	for !c.IsMatchOver() {
		c.io.ShowMessage(fmt.Sprintf("ROUND %d", roundNumber), ports.Log)

		// Retry aborted rounds with the same dealer until one completes.
		for {
			completed, err := c.playRound(ctx)
			if err != nil {
				return nil, err
			}
			if completed {
				break
			}
			if c.IsMatchOver() {
				break
			}
			c.io.ShowMessage("Round was aborted, starting new round with same dealer...", ports.Log)
		}

		c.io.ClearKickedCards()
		c.io.ShowScores(c.teamA, c.teamB)
		c.io.WaitForOverlayQueue()

		if c.IsMatchOver() {
			break
		}

		c.rotateDealer()
		roundNumber++
	}

	winner := c.WinningTeam()
	c.io.ShowMessage(fmt.Sprintf("%s wins the match with %d chalk!", winner.Name, winner.MatchScore()), ports.Both)
	return winner, nil
}
