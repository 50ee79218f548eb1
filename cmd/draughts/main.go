package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/draughts/internal/protocol"
	"github.com/hailam/draughts/internal/storage"
)

var (
	configPath = flag.String("config", "", "settings JSON file (default: stored settings)")
	dbDir      = flag.String("db", "", "database directory (default: platform data directory)")
	noDB       = flag.Bool("nodb", false, "do not store settings or finished games")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run does the work of main so that its deferred cleanup happens before
// the process exits.
func run() error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	store := openStorage()
	if store != nil {
		defer store.Close()
	}

	settings, err := storage.ResolveSettings(*configPath, store)
	if err != nil {
		return fmt.Errorf("could not load settings: %w", err)
	}

	if store != nil {
		if first, err := store.IsFirstLaunch(); err == nil && first {
			// Seed the database so later runs start from the same settings.
			if err := store.SaveSettings(settings); err != nil {
				log.Printf("save settings: %v", err)
			}
			if err := store.MarkFirstLaunchComplete(); err != nil {
				log.Printf("mark first launch: %v", err)
			}
			log.Printf("First launch: settings stored")
		}
	}

	p, err := protocol.New(settings, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if store != nil {
		p.SetStorage(store)
	}
	if err := p.Run(); err != nil {
		log.Printf("read input: %v", err)
	}
	return nil
}

// openStorage opens the game database. Failure is not fatal: the protocol
// then runs without saving anything.
func openStorage() *storage.Storage {
	if *noDB {
		return nil
	}
	var (
		store *storage.Storage
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		log.Printf("Warning: database not opened: %v (games will not be saved)", err)
		return nil
	}
	return store
}
