package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"allfours/internal/app"
	"allfours/internal/bot"
	"allfours/internal/config"
	"allfours/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelGame = "allfours"

	PhaseLobby   = "lobby"
	PhasePlaying = "playing"
)

// MatchLabel is the JSON document Nakama indexes for match listing queries.
type MatchLabel struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [4]string                   `json:"seats"`      // user ids, empty string means seat is open
	OwnerSeat int                         `json:"owner_seat"` // seat index of the match owner
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"`
	Bots      map[string]*bot.Agent       `json:"-"`

	// Engine plumbing; populated while a game runs.
	IO      *engineIO          `json:"-"`
	Cancel  context.CancelFunc `json:"-"`
	Done    chan struct{}      `json:"-"`
	Running bool               `json:"running"`

	// Pending prompt routing.
	Pending    promptRequest `json:"-"`
	PendingSet bool          `json:"-"`

	// Bot pacing.
	BotMinDelay          int   `json:"bot_min_delay"`
	BotMaxDelay          int   `json:"bot_max_delay"`
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`
	BotWaitUntil         int64 `json:"bot_wait_until"`
	LastSinglePlayerTick int64 `json:"last_single_player_tick"`

	// Game context mirrored from outbound events so bot seats can decide
	// without reaching into the engine goroutine.
	TrumpSuit    domain.Suit   `json:"-"`
	CurrentTrick []domain.Card `json:"-"`
	TeamAScore   int           `json:"-"`
	TeamBScore   int           `json:"-"`
}

func (ms *MatchState) OpenSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) HumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !bot.IsBot(seat) {
			count++
		}
	}
	return count
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userID := seats[seatIndex]
	return userID != "" && !bot.IsBot(userID)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1.
func findFirstHumanSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" && !bot.IsBot(userID) {
			return i
		}
	}
	return -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	minDelay, maxDelay := config.BotDelayBounds()
	state := &MatchState{
		OwnerSeat:        -1,
		Tick:             time.Now().Unix(),
		Presences:        make(map[string]runtime.Presence),
		Bots:             make(map[string]*bot.Agent),
		BotMinDelay:      minDelay,
		BotMaxDelay:      maxDelay,
		BotAutoFillDelay: config.BotAutoFillDelay(),
	}

	labelBytes, err := json.Marshal(&MatchLabel{
		Open:  true,
		Game:  MatchLabelGame,
		Phase: PhaseLobby,
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.Running {
		return state, false, "Game in progress"
	}
	if matchState.OpenSeatCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if bot.IsBot(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := -1
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = i
				break
			}
		}

		if assigned < 0 && !matchState.Running {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, p.GetUserId(), i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = p.GetUserId()
					assigned = i
					break
				}
			}
		}

		if assigned < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
			continue
		}

		mh.broadcast(matchState, dispatcher, logger, OpPlayerJoined, PlayerJoinedEvent{
			UserID: p.GetUserId(),
			Name:   p.GetUsername(),
			Seat:   assigned,
		}, "")
	}

	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserID := range matchState.Seats {
			if seatUserID == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				mh.broadcast(matchState, dispatcher, logger, OpPlayerLeft, PlayerLeftEvent{
					UserID: p.GetUserId(),
					Seat:   i,
				}, "")
				break
			}
		}
	}

	matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])

	if matchState.OwnerSeat == -1 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		if matchState.Cancel != nil {
			matchState.Cancel()
		}
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartMatch:
			mh.handleStartMatch(matchState, dispatcher, logger, msg)
		case OpDecision:
			mh.handleDecision(matchState, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(matchState, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.drainEngine(matchState, dispatcher, logger)
	mh.processBots(matchState, dispatcher, logger)

	if matchState.Running {
		select {
		case <-matchState.Done:
			matchState.Running = false
			matchState.PendingSet = false
			matchState.IO = nil
			matchState.Cancel = nil
			matchState.Done = nil
			mh.updateLabel(matchState, dispatcher, logger)
		default:
		}
	}

	return matchState
}

// handleStartMatch starts the engine goroutine. Empty seats are filled with
// bots so a partial lobby can still play.
func (mh *matchHandler) handleStartMatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := seatOf(state.Seats[:], msg.GetUserId())
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartMatch: User %s tried to start but is not owner (owner_seat=%d)", msg.GetUserId(), state.OwnerSeat)
		return
	}
	if state.Running {
		logger.Warn("StartMatch: Game already in progress.")
		return
	}

	for i, seat := range state.Seats {
		if seat == "" {
			mh.fillSeatWithBot(state, dispatcher, logger, i)
		}
	}

	players := make([]app.PlayerData, len(state.Seats))
	seatInfos := make([]SeatInfo, len(state.Seats))
	for i, userID := range state.Seats {
		players[i] = app.PlayerData{PlayerID: userID, PlayerName: mh.displayName(state, userID)}
		seatInfos[i] = SeatInfo{
			UserID: userID,
			Name:   players[i].PlayerName,
			Seat:   i,
			IsBot:  bot.IsBot(userID),
		}
	}

	io := newEngineIO()
	controller, err := app.NewController(io, nil, players, nil)
	if err != nil {
		logger.Error("StartMatch: Failed to create controller: %v", err)
		return
	}
	controller.SetTargetScore(config.TargetScore())

	engineCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	state.IO = io
	state.Cancel = cancel
	state.Done = done
	state.Running = true
	state.TrumpSuit = domain.NoSuit
	state.CurrentTrick = nil
	state.TeamAScore = 0
	state.TeamBScore = 0

	go func() {
		defer close(done)
		defer cancel()
		winner, err := controller.PlayMatch(engineCtx)
		if err != nil {
			logger.Warn("Match engine stopped: %v", err)
			return
		}
		if winner != nil {
			io.emit(OpMatchEnded, MatchEndedEvent{
				WinningTeam: winner.Name,
				Score:       winner.MatchScore(),
			}, "")
		}
	}()

	mh.broadcast(state, dispatcher, logger, OpMatchStarted, MatchStartedEvent{Seats: seatInfos}, "")
	mh.updateLabel(state, dispatcher, logger)
	logger.Info("StartMatch: Game started by seat %d.", senderSeat)
}

func (mh *matchHandler) handleDecision(state *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	if !state.PendingSet || state.Pending.Kind != promptDecision {
		logger.Warn("handleDecision: No decision prompt outstanding.")
		return
	}
	if msg.GetUserId() != state.Pending.PlayerID {
		logger.Warn("handleDecision: User %s answered a prompt addressed to %s.", msg.GetUserId(), state.Pending.PlayerID)
		return
	}

	var req DecisionMessage
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleDecision: Invalid payload from %s: %v", msg.GetUserId(), err)
		return
	}

	if err := state.IO.answer(promptResponse{Text: req.Answer}); err == nil {
		state.PendingSet = false
	}
}

func (mh *matchHandler) handlePlayCard(state *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	if !state.PendingSet || state.Pending.Kind != promptCard {
		logger.Warn("handlePlayCard: No card prompt outstanding.")
		return
	}
	if msg.GetUserId() != state.Pending.PlayerID {
		logger.Warn("handlePlayCard: User %s answered a prompt addressed to %s.", msg.GetUserId(), state.Pending.PlayerID)
		return
	}

	var req PlayCardMessage
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handlePlayCard: Invalid payload from %s: %v", msg.GetUserId(), err)
		return
	}

	if err := state.IO.answer(promptResponse{Index: req.Index}); err == nil {
		state.PendingSet = false
	}
}

// drainEngine forwards queued engine events to connected presences and
// records any newly published prompt.
func (mh *matchHandler) drainEngine(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.IO == nil {
		return
	}

	if !state.PendingSet {
		select {
		case req := <-state.IO.prompts:
			state.Pending = req
			state.PendingSet = true
			state.BotWaitUntil = 0
		default:
		}
	}

	for {
		select {
		case ev := <-state.IO.out:
			mh.trackGameContext(state, ev)
			mh.dispatch(state, dispatcher, logger, ev)
		default:
			return
		}
	}
}

// trackGameContext mirrors trump and trick state off the wire so bot seats
// have the context their strategies need.
func (mh *matchHandler) trackGameContext(state *MatchState, ev outEvent) {
	switch ev.Op {
	case OpKickedCard:
		var p KickedCardEvent
		if json.Unmarshal(ev.Data, &p) == nil {
			state.TrumpSuit = fromWireCard(p.Card).Suit
		}
	case OpClearKicked:
		state.TrumpSuit = domain.NoSuit
	case OpTrickState:
		var p TrickStateEvent
		if json.Unmarshal(ev.Data, &p) == nil {
			cards := make([]domain.Card, 0, len(p.Plays))
			for _, play := range p.Plays {
				cards = append(cards, fromWireCard(play.Card))
			}
			state.CurrentTrick = cards
		}
	case OpScores:
		var p ScoresEvent
		if json.Unmarshal(ev.Data, &p) == nil {
			state.TeamAScore = p.TeamAScore
			state.TeamBScore = p.TeamBScore
		}
	}
}

func (mh *matchHandler) dispatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev outEvent) {
	if ev.TargetUserID == "" {
		if err := dispatcher.BroadcastMessage(ev.Op, ev.Data, nil, nil, true); err != nil {
			logger.Error("dispatch: Broadcast failed: %v", err)
		}
		return
	}

	presence, ok := state.Presences[ev.TargetUserID]
	if !ok {
		// Bots and disconnected players have no presence; drop silently.
		return
	}
	if err := dispatcher.BroadcastMessage(ev.Op, ev.Data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("dispatch: Targeted send failed: %v", err)
	}
}

func (mh *matchHandler) processBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill the lobby when a single human has waited long enough.
	if !state.Running {
		if state.HumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						mh.fillSeatWithBot(state, dispatcher, logger, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// Answer prompts addressed to bot seats after a humanizing delay.
	if !state.PendingSet || !bot.IsBot(state.Pending.PlayerID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[state.Pending.PlayerID]
	if !exists {
		logger.Error("processBots: No agent for bot %s", state.Pending.PlayerID)
		return
	}

	var resp promptResponse
	switch state.Pending.Kind {
	case promptDecision:
		var yes bool
		if strings.EqualFold(state.Pending.Options.YesText, "Beg") {
			yes = agent.Strategy.DecideBeg(state.Pending.Hand, state.TrumpSuit)
		} else {
			yes = agent.Strategy.DecideGive(state.Pending.Hand, state.TrumpSuit, beggingTeamScore(state, state.Pending.PlayerID))
		}
		resp.Text = "no"
		if yes {
			resp.Text = "yes"
		}
	case promptCard:
		lead := domain.NoSuit
		if len(state.CurrentTrick) > 0 {
			lead = state.CurrentTrick[0].Suit
		}
		resp.Index = agent.Strategy.ChooseCard(state.Pending.Hand, lead, state.TrumpSuit, state.CurrentTrick)
	default:
		return
	}

	if err := state.IO.answer(resp); err == nil {
		state.PendingSet = false
	}
}

func (mh *matchHandler) fillSeatWithBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	botID, botName := bot.DefaultIdentity(seat)
	agent, err := bot.NewAgent(botID, botName, bot.BotLevelSmart)
	if err != nil {
		logger.Error("fillSeatWithBot: Failed to create agent for seat %d: %v", seat, err)
		return
	}
	state.Seats[seat] = botID
	state.Bots[botID] = agent
	logger.Info("fillSeatWithBot: Added bot %s (%s) to seat %d", botName, botID, seat)

	mh.broadcast(state, dispatcher, logger, OpPlayerJoined, PlayerJoinedEvent{
		UserID: botID,
		Name:   botName,
		Seat:   seat,
	}, "")
}

func (mh *matchHandler) displayName(state *MatchState, userID string) string {
	if p, exists := state.Presences[userID]; exists {
		return p.GetUsername()
	}
	if agent, exists := state.Bots[userID]; exists {
		return agent.Name
	}
	return userID
}

// broadcast marshals payload and sends it to everyone, or to one presence
// when target is non-empty.
func (mh *matchHandler) broadcast(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, op int64, payload any, target string) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcast: Failed to marshal op %d: %v", op, err)
		return
	}
	mh.dispatch(state, dispatcher, logger, outEvent{Op: op, Data: data, TargetUserID: target})
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := PhaseLobby
	if state.Running {
		phase = PhasePlaying
	}

	labelBytes, err := json.Marshal(&MatchLabel{
		Open:  !state.Running && state.OpenSeatCount() > 0,
		Game:  MatchLabelGame,
		Phase: phase,
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok && matchState.Cancel != nil {
		matchState.Cancel()
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

// beggingTeamScore returns the mirrored chalk of the team opposing the
// prompted dealer, which is the team that begged. Seats 0 and 2 form the
// first team and 1 and 3 the second, matching the controller's seating.
func beggingTeamScore(state *MatchState, dealerID string) int {
	seat := seatOf(state.Seats[:], dealerID)
	if seat < 0 {
		return 0
	}
	if seat%2 == 0 {
		return state.TeamBScore
	}
	return state.TeamAScore
}

func seatOf(seats []string, userID string) int {
	for i, seatUserID := range seats {
		if seatUserID == userID {
			return i
		}
	}
	return -1
}
