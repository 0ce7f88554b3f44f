package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"

	"allfours/internal/app"
	"allfours/internal/bot"
	"allfours/internal/config"
	"allfours/internal/ports/cli"
)

func main() {
	var (
		name       = flag.String("name", "You", "display name for the human seat")
		configPath = flag.String("config", "", "optional path to a game config JSON file")
		seed       = flag.Int64("seed", 0, "RNG seed, 0 for time-based")
	)
	flag.Parse()

	if *configPath != "" {
		if err := config.LoadGameConfig(*configPath); err != nil {
			pterm.Warning.Printfln("Could not load config %s: %v", *configPath, err)
		}
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	// Human takes seat 0; bots fill the remaining three.
	const humanID = "human"
	players := make([]app.PlayerData, 4)
	players[0] = app.PlayerData{PlayerID: humanID, PlayerName: *name}
	agents := make(map[string]*bot.Agent, 3)
	for seat := 1; seat < 4; seat++ {
		botID, botName := bot.DefaultIdentity(seat)
		agent, err := bot.NewAgent(botID, botName, bot.BotLevelSmart)
		if err != nil {
			pterm.Error.Printfln("Could not create bot for seat %d: %v", seat, err)
			os.Exit(1)
		}
		agents[botID] = agent
		players[seat] = app.PlayerData{PlayerID: botID, PlayerName: botName}
	}

	minDelay, maxDelay := config.BotDelayBounds()
	io := cli.New(humanID, agents, rng, minDelay, maxDelay)

	controller, err := app.NewController(io, rng, players, nil)
	if err != nil {
		pterm.Error.Printfln("Could not set up the match: %v", err)
		os.Exit(1)
	}
	controller.SetTargetScore(config.TargetScore())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pterm.DefaultHeader.Println("All Fours")
	pterm.Info.Printfln("You are partnered with %s. First team to %d wins.",
		players[2].PlayerName, config.TargetScore())
	time.Sleep(time.Second)

	winner, err := controller.PlayMatch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			pterm.Info.Println("Match abandoned.")
			return
		}
		pterm.Error.Printfln("Match ended with error: %v", err)
		os.Exit(1)
	}

	if winner != nil {
		pterm.Success.Printfln("%s wins the match with %d!", winner.Name, winner.MatchScore())
	}
}
