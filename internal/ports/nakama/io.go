package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"allfours/internal/bot"
	"allfours/internal/domain"
	"allfours/internal/ports"
)

// promptKind tags a pending prompt so the match loop can route client
// messages and answer bot seats.
type promptKind int

const (
	promptNone promptKind = iota
	promptDecision
	promptCard
)

// outEvent is one serialized server event queued for broadcast. An empty
// TargetUserID broadcasts to everyone; otherwise only the named presence
// receives it.
type outEvent struct {
	Op           int64
	Data         []byte
	TargetUserID string
}

// promptRequest is published alongside the prompt event so the match loop
// knows who owes an answer and of which kind.
type promptRequest struct {
	Kind     promptKind
	PlayerID string
	Hand     []domain.Card
	Options  ports.PromptOptions
}

// promptResponse carries a client or bot answer back to the blocked engine.
type promptResponse struct {
	Text  string
	Index int
}

// engineIO bridges the blocking game engine to the tick-based match loop.
// The engine goroutine calls the GameIO methods; the match loop drains the
// out channel every tick and feeds responses when the prompted player (or a
// bot on their behalf) answers.
type engineIO struct {
	out       chan outEvent
	prompts   chan promptRequest
	responses chan promptResponse
}

var _ ports.GameIO = (*engineIO)(nil)

func newEngineIO() *engineIO {
	return &engineIO{
		out:       make(chan outEvent, 256),
		prompts:   make(chan promptRequest, 1),
		responses: make(chan promptResponse, 1),
	}
}

func (e *engineIO) emit(op int64, payload any, target string) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case e.out <- outEvent{Op: op, Data: data, TargetUserID: target}:
	default:
		// Queue full; drop rather than deadlock the engine. The queue is
		// sized well beyond a round's worth of events.
	}
}

func (e *engineIO) PromptPlayer(ctx context.Context, player *domain.Player, prompt string, opts ports.PromptOptions) (string, error) {
	e.prompts <- promptRequest{
		Kind:     promptDecision,
		PlayerID: player.ID,
		Hand:     append([]domain.Card(nil), player.Hand...),
		Options:  opts,
	}
	e.emit(OpPromptDecision, PromptDecisionEvent{
		Prompt:  prompt,
		YesText: opts.YesText,
		NoText:  opts.NoText,
	}, player.ID)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case resp := <-e.responses:
		return resp.Text, nil
	}
}

func (e *engineIO) PromptCard(ctx context.Context, player *domain.Player, hand []domain.Card) (int, error) {
	handCopy := append([]domain.Card(nil), hand...)
	e.prompts <- promptRequest{Kind: promptCard, PlayerID: player.ID, Hand: handCopy}
	e.emit(OpPromptCard, PromptCardEvent{Hand: toWireCards(hand)}, player.ID)
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case resp := <-e.responses:
		return resp.Index, nil
	}
}

func (e *engineIO) RejectPlay(player *domain.Player, reason string) {
	e.emit(OpRejectPlay, RejectPlayEvent{Reason: reason}, player.ID)
}

func (e *engineIO) ShowMessage(text string, ch ports.Channel) {
	target := ""
	if ch.Kind == ports.ChannelPrivate {
		target = ch.PlayerID
	}
	e.emit(OpMessage, MessageEvent{Text: text}, target)
}

func (e *engineIO) ShowKickedCard(card domain.Card) {
	e.emit(OpKickedCard, KickedCardEvent{Card: toWireCard(card)}, "")
}

func (e *engineIO) ClearKickedCards() {
	e.emit(OpClearKicked, struct{}{}, "")
}

// ShowPlayerHands sends each human their own hand privately. Over the wire
// nobody sees anyone else's cards regardless of phase.
func (e *engineIO) ShowPlayerHands(players []*domain.Player, _ ports.HandContext) {
	for _, p := range players {
		if bot.IsBot(p.ID) {
			continue
		}
		e.emit(OpHandDealt, HandDealtEvent{Cards: toWireCards(p.Hand)}, p.ID)
	}
}

func (e *engineIO) ShowTrickState(played []domain.PlayedCard) {
	plays := make([]TrickPlay, 0, len(played))
	for _, pc := range played {
		plays = append(plays, TrickPlay{
			UserID: pc.Player.ID,
			Name:   pc.Player.Name,
			Card:   toWireCard(pc.Card),
		})
	}
	e.emit(OpTrickState, TrickStateEvent{Plays: plays}, "")
}

func (e *engineIO) ShowScores(teamA, teamB *domain.Team) {
	e.emit(OpScores, ScoresEvent{
		TeamAName:  teamA.Name,
		TeamAScore: teamA.MatchScore(),
		TeamBName:  teamB.Name,
		TeamBScore: teamB.MatchScore(),
	}, "")
}

func (e *engineIO) SetActivePlayer(playerID string) {
	e.emit(OpActivePlayer, ActivePlayerEvent{UserID: playerID}, "")
}

func (e *engineIO) WaitForOverlayQueue() {}

// answer delivers a response to the blocked engine without blocking the
// match loop.
func (e *engineIO) answer(resp promptResponse) error {
	select {
	case e.responses <- resp:
		return nil
	default:
		return fmt.Errorf("no prompt outstanding")
	}
}
