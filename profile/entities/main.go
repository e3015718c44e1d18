// Profiling:
// go build ./profile/entities
// HAKO_ROUNDS=10 ./entities --entities 5000
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"os"

	"github.com/JeremyLoy/config"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/edwinsyarief/hako"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

type Config struct {
	Rounds   int    `config:"HAKO_ROUNDS"`
	Iters    int    `config:"HAKO_ITERS"`
	Entities int    `config:"HAKO_ENTITIES"`
	Path     string `config:"HAKO_PROFILE_PATH"`
}

func loadConfig() Config {
	cfg := Config{Rounds: 50, Iters: 1000, Entities: 1000, Path: "."}
	if err := config.FromEnv().To(&cfg); err != nil {
		panic(err)
	}
	pflag.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "worlds to create")
	pflag.IntVar(&cfg.Iters, "iters", cfg.Iters, "spawn/query/despawn cycles per world")
	pflag.IntVar(&cfg.Entities, "entities", cfg.Entities, "entities spawned per cycle")
	pflag.StringVar(&cfg.Path, "path", cfg.Path, "directory the profile is written to")
	pflag.Parse()
	return cfg
}

func main() {
	cfg := loadConfig()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	logger.Info().
		Int("rounds", cfg.Rounds).
		Int("iters", cfg.Iters).
		Int("entities", cfg.Entities).
		Msg("profiling entity churn")

	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	last := run(cfg)
	p.Stop()

	stats, err := last.Stats().JSON()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode stats")
	}
	logger.Info().RawJSON("stats", stats).Msg("done")
}

func run(cfg Config) *hako.World {
	var w *hako.World
	for range cfg.Rounds {
		w = hako.NewWorld(hako.WithInitialCapacity(cfg.Entities))
		c1 := hako.NewHandle[comp1](w)
		c2 := hako.NewHandle[comp2](w)
		b := hako.NewBuilder(w)
		hako.With(b, c1, comp1{})
		hako.With(b, c2, comp2{V: 1, W: 2})

		entities := make([]hako.Entity, 0, cfg.Entities)
		for range cfg.Iters {
			b.SpawnN(cfg.Entities)
			q, err := hako.NewQuery(w, hako.Join3(hako.Entities(), hako.Write(c1), hako.Read(c2)))
			if err != nil {
				panic(err)
			}
			entities = entities[:0]
			for q.Next() {
				t := q.Get()
				entities = append(entities, t.V1)
				t.V2.V += t.V3.V
				t.V2.W += t.V3.W
			}
			q.Release()
			for _, e := range entities {
				w.Despawn(e)
			}
		}
	}
	return w
}
