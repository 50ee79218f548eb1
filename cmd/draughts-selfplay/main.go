// Command draughts-selfplay plays bot-against-bot games and logs the time
// spent on every bot turn and every game.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hailam/draughts/internal/board"
	"github.com/hailam/draughts/internal/game"
	"github.com/hailam/draughts/internal/storage"
)

var (
	games      = flag.Int("games", 1, "number of games to play")
	configPath = flag.String("config", "", "settings JSON file (default: stored settings)")
	dbDir      = flag.String("db", "", "database directory (default: platform data directory)")
	noDB       = flag.Bool("nodb", false, "do not record games")
	logPath    = flag.String("log", "", "write timing log to file instead of stderr")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("could not open log: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetFlags(0)
	}

	var store *storage.Storage
	if !*noDB {
		var err error
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: database not opened: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	settings, err := storage.ResolveSettings(*configPath, store)
	if err != nil {
		return fmt.Errorf("could not load settings: %w", err)
	}
	settings.Bot.IsWhiteBot = true
	settings.Bot.IsBlackBot = true

	for i := 1; i <= *games; i++ {
		g, err := game.New(settings)
		if err != nil {
			return err
		}
		if err := play(g, settings.BotDelay()); err != nil {
			return err
		}
		fmt.Printf("game %d: %s after %d turns\n", i, g.Status(), g.TurnNumber())

		if store == nil {
			continue
		}
		if err := store.RecordResult(storage.RecordFromGame("", g)); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
	}

	if store != nil {
		stats, err := store.LoadStats()
		if err != nil {
			return err
		}
		fmt.Printf("total: %d games, white %.1f%%, black %.1f%%, draws %d\n",
			stats.GamesPlayed, stats.GetWinRate(board.White), stats.GetWinRate(board.Black), stats.Draws)
	}
	return nil
}

// play runs g to the end, pausing delay before each bot turn.
func play(g *game.Game, delay time.Duration) error {
	for g.Status() == game.Ongoing {
		time.Sleep(delay)
		start := time.Now()
		if _, err := g.PlayBot(); err != nil {
			return err
		}
		log.Printf("Bot turn time: %d millisec", time.Since(start).Milliseconds())
	}
	log.Printf("Game time: %d millisec", g.Duration().Milliseconds())
	return nil
}
