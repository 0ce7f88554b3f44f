package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameAllFours is the authoritative match handler name registered
	// with Nakama.
	MatchNameAllFours = "allfours_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch int64 = 1
	OpDecision   int64 = 2 // answer to a beg/stand or give/run prompt
	OpPlayCard   int64 = 3 // answer to a card prompt

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpMatchStarted   int64 = 103
	OpHandDealt      int64 = 104 // sent privately
	OpPromptDecision int64 = 105
	OpPromptCard     int64 = 106
	OpMessage        int64 = 107
	OpKickedCard     int64 = 108
	OpClearKicked    int64 = 109
	OpTrickState     int64 = 110
	OpScores         int64 = 111
	OpActivePlayer   int64 = 112
	OpRejectPlay     int64 = 113 // sent privately
	OpMatchEnded     int64 = 114
)
