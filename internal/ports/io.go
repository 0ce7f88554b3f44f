package ports

import (
	"context"
	"strings"

	"allfours/internal/domain"
)

// ChannelKind selects where a message surfaces.
type ChannelKind int

const (
	// ChannelLog appends to the shared game log.
	ChannelLog ChannelKind = iota
	// ChannelOverlay shows a transient overlay to everyone.
	ChannelOverlay
	// ChannelBoth does both.
	ChannelBoth
	// ChannelPrivate targets one player only.
	ChannelPrivate
)

// Channel addresses a ShowMessage call. Private messages carry the target
// player's id.
type Channel struct {
	Kind     ChannelKind
	PlayerID string
}

var (
	Log     = Channel{Kind: ChannelLog}
	Overlay = Channel{Kind: ChannelOverlay}
	Both    = Channel{Kind: ChannelBoth}
)

// Private returns a channel addressing one player.
func Private(playerID string) Channel {
	return Channel{Kind: ChannelPrivate, PlayerID: playerID}
}

// PromptOptions label the two answers of a yes/no prompt.
type PromptOptions struct {
	YesText string
	NoText  string
}

// HandContext carries the round flags an adapter needs to apply its own hand
// visibility rules. The engine supplies the flags; what gets revealed is the
// adapter's concern.
type HandContext struct {
	BeggingPhase bool
	Beggar       *domain.Player
	Dealer       *domain.Player
}

// GameIO is the engine's only window to the outside world. Implementations
// (terminal, networked match adapter, scripted test harness) are swappable
// strategies; the engine blocks on the prompt methods until the designated
// player's response arrives and never prompts two players concurrently.
type GameIO interface {
	// PromptPlayer blocks until player answers a yes/no question. The raw
	// response is returned; callers tolerant-parse it and re-prompt on
	// invalid input.
	PromptPlayer(ctx context.Context, player *domain.Player, prompt string, opts PromptOptions) (string, error)

	// PromptCard blocks until player selects an index into hand.
	PromptCard(ctx context.Context, player *domain.Player, hand []domain.Card) (int, error)

	// RejectPlay delivers an illegal-play reason privately to the player.
	RejectPlay(player *domain.Player, reason string)

	// ShowMessage surfaces text on the given channel.
	ShowMessage(text string, ch Channel)

	// ShowKickedCard displays a kicked trump card; ClearKickedCards resets
	// the display between rounds and on pack-run restarts.
	ShowKickedCard(card domain.Card)
	ClearKickedCards()

	// ShowPlayerHands pushes current hands with visibility context.
	ShowPlayerHands(players []*domain.Player, hctx HandContext)

	// ShowTrickState pushes the cards played so far in the current trick.
	ShowTrickState(played []domain.PlayedCard)

	// ShowScores pushes both teams' scores.
	ShowScores(teamA, teamB *domain.Team)

	// SetActivePlayer hints which player the UI should highlight.
	SetActivePlayer(playerID string)

	// WaitForOverlayQueue is an optional pacing hook between rounds.
	WaitForOverlayQueue()
}

// ParseYesNo tolerant-parses a free-text prompt response. ok is false for
// anything that is neither an accept nor a decline, in which case the caller
// re-prompts.
func ParseYesNo(response string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	default:
		return false, false
	}
}
