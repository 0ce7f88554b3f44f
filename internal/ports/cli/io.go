// Package cli implements the GameIO port on a terminal. One human seat is
// prompted interactively through pterm; the remaining seats are driven by
// bot agents.
package cli

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"allfours/internal/bot"
	"allfours/internal/domain"
	"allfours/internal/ports"
)

// IO renders the game to the terminal and gathers decisions. It tracks the
// kicked card and current trick from the engine's Show calls so bot agents
// can reason about trump and the trick in progress.
type IO struct {
	humanID string
	bots    map[string]*bot.Agent
	rng     *rand.Rand

	minDelay time.Duration
	maxDelay time.Duration

	trumpSuit    domain.Suit
	currentTrick []domain.PlayedCard
	teamA        *domain.Team
	teamB        *domain.Team
}

// New creates a terminal IO with the given human seat and bot agents keyed
// by player id. Delay bounds pace the bots' moves.
func New(humanID string, agents map[string]*bot.Agent, rng *rand.Rand, minDelaySec, maxDelaySec int) *IO {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &IO{
		humanID:  humanID,
		bots:     agents,
		rng:      rng,
		minDelay: time.Duration(minDelaySec) * time.Second,
		maxDelay: time.Duration(maxDelaySec) * time.Second,
	}
}

var _ ports.GameIO = (*IO)(nil)

func (io *IO) isBot(playerID string) bool {
	_, ok := io.bots[playerID]
	return ok
}

func (io *IO) thinkDelay() {
	if io.maxDelay <= 0 {
		return
	}
	span := io.maxDelay - io.minDelay
	d := io.minDelay
	if span > 0 {
		d += time.Duration(io.rng.Int63n(int64(span)))
	}
	time.Sleep(d)
}

// PromptPlayer asks a yes/no question. Bot seats answer from their strategy;
// the human seat gets an interactive prompt.
func (io *IO) PromptPlayer(ctx context.Context, player *domain.Player, prompt string, opts ports.PromptOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if agent, ok := io.bots[player.ID]; ok {
		io.thinkDelay()
		var yes bool
		if strings.EqualFold(opts.YesText, "Beg") {
			yes = agent.Strategy.DecideBeg(player.Hand, io.trumpSuit)
		} else {
			yes = agent.Strategy.DecideGive(player.Hand, io.trumpSuit, io.beggingTeamScore(player))
		}
		if yes {
			return "yes", nil
		}
		return "no", nil
	}

	choice, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText(fmt.Sprintf("%s, %s [%s/%s]", player.Name, prompt, opts.YesText, opts.NoText)).
		Show()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	// Map the option labels onto yes/no so the engine's tolerant parse works.
	switch {
	case strings.EqualFold(strings.TrimSpace(choice), opts.YesText):
		return "yes", nil
	case strings.EqualFold(strings.TrimSpace(choice), opts.NoText):
		return "no", nil
	default:
		return choice, nil
	}
}

// PromptCard asks for a card index into hand.
func (io *IO) PromptCard(ctx context.Context, player *domain.Player, hand []domain.Card) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if agent, ok := io.bots[player.ID]; ok {
		io.thinkDelay()
		lead := domain.NoSuit
		played := make([]domain.Card, 0, len(io.currentTrick))
		for _, pc := range io.currentTrick {
			played = append(played, pc.Card)
		}
		if len(played) > 0 {
			lead = played[0].Suit
		}
		return agent.Strategy.ChooseCard(hand, lead, io.trumpSuit, played), nil
	}

	io.printHand(player.Name, hand)
	for {
		input, err := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Select a card to play (1-%d)", len(hand))).
			Show()
		if err != nil {
			return 0, fmt.Errorf("card prompt failed: %w", err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			pterm.Warning.Println("Enter a card number.")
			continue
		}
		return n - 1, nil
	}
}

// RejectPlay surfaces an illegal-play reason to the player.
func (io *IO) RejectPlay(player *domain.Player, reason string) {
	if io.isBot(player.ID) {
		// A brain returning an illegal index is a programming error worth
		// seeing during development.
		pterm.Warning.Printfln("bot %s rejected: %s", player.Name, reason)
		return
	}
	pterm.Warning.Printfln("%s. Try again.", reason)
}

// ShowMessage prints to the terminal; private messages for bot seats are
// dropped.
func (io *IO) ShowMessage(text string, ch ports.Channel) {
	switch ch.Kind {
	case ports.ChannelPrivate:
		if ch.PlayerID == io.humanID {
			pterm.Info.Println(text)
		}
	case ports.ChannelOverlay, ports.ChannelBoth:
		pterm.DefaultBox.Println(text)
	default:
		pterm.Info.Println(text)
	}
}

// ShowKickedCard displays the kicked card and records the trump suit for
// the bot seats.
func (io *IO) ShowKickedCard(card domain.Card) {
	io.trumpSuit = card.Suit
	pterm.DefaultBox.WithTitle("Kicked").Println(card.String())
}

// ClearKickedCards resets the kicked-card display.
func (io *IO) ClearKickedCards() {
	io.trumpSuit = domain.NoSuit
}

// ShowPlayerHands prints the human player's hand; other hands stay hidden.
func (io *IO) ShowPlayerHands(players []*domain.Player, hctx ports.HandContext) {
	for _, p := range players {
		if p.ID == io.humanID {
			io.printHand(p.Name, p.Hand)
		}
	}
}

// ShowTrickState renders the cards on the table and keeps them for the bots.
func (io *IO) ShowTrickState(played []domain.PlayedCard) {
	io.currentTrick = played
	if len(played) == 0 {
		return
	}
	lines := make([]string, 0, len(played))
	for _, pc := range played {
		lines = append(lines, fmt.Sprintf("%s: %s", pc.Player.Name, pc.Card))
	}
	pterm.DefaultBox.WithTitle("Trick").Println(strings.Join(lines, "\n"))
}

// beggingTeamScore returns the chalk of the team opposing the prompted
// dealer, which is the team that begged. Zero until scores have been shown.
func (io *IO) beggingTeamScore(dealer *domain.Player) int {
	if io.teamA == nil || io.teamB == nil {
		return 0
	}
	if io.teamA.HasPlayer(dealer) {
		return io.teamB.MatchScore()
	}
	return io.teamA.MatchScore()
}

// ShowScores renders both teams' chalk and game points, keeping the teams
// for the bot seats' give/run decisions.
func (io *IO) ShowScores(teamA, teamB *domain.Team) {
	io.teamA = teamA
	io.teamB = teamB
	data := pterm.TableData{
		{"Team", "Chalk", "Game"},
		{teamA.Name, strconv.Itoa(teamA.MatchScore()), strconv.Itoa(teamA.GameScore())},
		{teamB.Name, strconv.Itoa(teamB.MatchScore()), strconv.Itoa(teamB.GameScore())},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// SetActivePlayer is a no-op on the terminal.
func (io *IO) SetActivePlayer(playerID string) {}

// WaitForOverlayQueue is a no-op on the terminal.
func (io *IO) WaitForOverlayQueue() {}

func (io *IO) printHand(name string, hand []domain.Card) {
	lines := make([]string, 0, len(hand))
	for i, c := range hand {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, c))
	}
	pterm.DefaultBox.WithTitle(name + "'s hand").Println(strings.Join(lines, "\n"))
}
