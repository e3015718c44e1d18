// Profiling:
// go build ./profile/query
// ./query --parallel
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"context"
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

type comp3 struct {
	V int64
	W int64
}

type comp4 struct {
	V int64
	W int64
}

type comp5 struct {
	V int64
	W int64
}

type comp6 struct {
	V int64
	W int64
}

type Config struct {
	Rounds   int    `config:"HAKO_ROUNDS"`
	Iters    int    `config:"HAKO_ITERS"`
	Entities int    `config:"HAKO_ENTITIES"`
	Path     string `config:"HAKO_PROFILE_PATH"`
	Parallel bool   `config:"HAKO_PARALLEL"`
	Debug    bool   `config:"HAKO_DEBUG"`
}

func loadConfig() Config {
	cfg := Config{Rounds: 5, Iters: 1000, Entities: 100000, Path: "."}
	if err := config.FromEnv().To(&cfg); err != nil {
		panic(err)
	}
	pflag.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "worlds to create")
	pflag.IntVar(&cfg.Iters, "iters", cfg.Iters, "schedule runs per world")
	pflag.IntVar(&cfg.Entities, "entities", cfg.Entities, "entities per world")
	pflag.StringVar(&cfg.Path, "path", cfg.Path, "directory the profile is written to")
	pflag.BoolVar(&cfg.Parallel, "parallel", cfg.Parallel, "run non-conflicting systems concurrently")
	pflag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log schedule construction")
	pflag.Parse()
	return cfg
}

type moveState struct {
	Moving hako.QueryParam[hako.Tuple2[*comp1, *comp2]]
}

type spinState struct {
	Spinning hako.QueryParam[hako.Tuple4[*comp3, *comp4, *comp5, *comp6]]
}

func main() {
	cfg := loadConfig()
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	p := profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	err := run(cfg, logger)
	p.Stop()
	if err != nil {
		logger.Fatal().Err(err).Msg("profile run failed")
	}
}

func run(cfg Config, logger zerolog.Logger) error {
	ctx := context.Background()
	for range cfg.Rounds {
		w := hako.NewWorld(hako.WithLogger(logger), hako.WithInitialCapacity(cfg.Entities))
		c1 := hako.NewHandle[comp1](w)
		c2 := hako.NewHandle[comp2](w)
		c3 := hako.NewHandle[comp3](w)
		c4 := hako.NewHandle[comp4](w)
		c5 := hako.NewHandle[comp5](w)
		c6 := hako.NewHandle[comp6](w)

		b := hako.NewBuilder(w)
		hako.With(b, c1, comp1{})
		hako.With(b, c2, comp2{V: 1, W: 1})
		hako.With(b, c3, comp3{})
		hako.With(b, c4, comp4{V: 1})
		hako.With(b, c5, comp5{W: 1})
		hako.With(b, c6, comp6{})
		b.SpawnN(cfg.Entities)

		move, err := hako.NewSystem(w, "move", &moveState{
			Moving: hako.NewQueryParam(hako.Join2(hako.Write(c1), hako.Read(c2))),
		}, func(s *moveState) error {
			for t := range s.Moving.Iter() {
				t.V1.V += t.V2.V
				t.V1.W += t.V2.W
			}
			return nil
		})
		if err != nil {
			return err
		}
		spin, err := hako.NewSystem(w, "spin", &spinState{
			Spinning: hako.NewQueryParam(hako.Join4(hako.Write(c3), hako.Read(c4), hako.Read(c5), hako.Write(c6))),
		}, func(s *spinState) error {
			for t := range s.Spinning.Iter() {
				t.V1.V += t.V2.V
				t.V4.W += t.V3.W
			}
			return nil
		})
		if err != nil {
			return err
		}

		sched := hako.NewScheduler(w, hako.WithParallel(cfg.Parallel))
		if err := sched.Register(move, spin); err != nil {
			return err
		}
		for range cfg.Iters {
			if err := sched.Run(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
