package domain

import "fmt"

// Team pairs two players with their scores. GameScore is the running
// game-point tally for the current round and resets every round; MatchScore
// is the chalk total for the whole match and never decreases.
type Team struct {
	Name    string
	Player1 *Player
	Player2 *Player

	gameScore  int
	matchScore int
}

// NewTeam constructs a team of two players with zero scores.
func NewTeam(name string, p1, p2 *Player) *Team {
	return &Team{Name: name, Player1: p1, Player2: p2}
}

// AddChalk adds points to the team's match score.
func (t *Team) AddChalk(points int) {
	t.matchScore += points
}

// AddGamePoints adds points to the team's game score for the current round.
func (t *Team) AddGamePoints(points int) {
	t.gameScore += points
}

// MatchScore returns the team's chalk total.
func (t *Team) MatchScore() int {
	return t.matchScore
}

// GameScore returns the team's game points for the current round.
func (t *Team) GameScore() int {
	return t.gameScore
}

// ResetGameScore clears the per-round game score.
func (t *Team) ResetGameScore() {
	t.gameScore = 0
}

// HasPlayer reports whether the player is on this team.
func (t *Team) HasPlayer(p *Player) bool {
	return t.Player1 == p || t.Player2 == p
}

// Partner returns the teammate of p, or nil if p is not on this team.
func (t *Team) Partner(p *Player) *Player {
	switch p {
	case t.Player1:
		return t.Player2
	case t.Player2:
		return t.Player1
	default:
		return nil
	}
}

func (t *Team) String() string {
	return fmt.Sprintf("%s (%s & %s) - Game: %d, Chalk: %d",
		t.Name, t.Player1.Name, t.Player2.Name, t.gameScore, t.matchScore)
}
