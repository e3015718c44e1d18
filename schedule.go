package hako

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scheduler runs systems in registration order, grouped into stages. A
// system is placed one stage after the latest earlier system whose access
// conflicts with its own, so systems sharing a stage never conflict. Queued
// commands are applied after each stage, in registration order.
type Scheduler struct {
	world    *World
	logger   zerolog.Logger
	systems  []*System
	stageOf  []int
	stages   [][]*System
	parallel bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithParallel runs the systems of one stage on separate goroutines.
func WithParallel(parallel bool) SchedulerOption {
	return func(s *Scheduler) {
		s.parallel = parallel
	}
}

// WithSchedulerLogger overrides the World's logger for scheduling events.
func WithSchedulerLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler returns an empty scheduler for w.
func NewScheduler(w *World, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{world: w, logger: w.logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register appends systems to the schedule. It fails with ErrForeignSystem,
// registering none of them, if one was composed against another World.
func (s *Scheduler) Register(systems ...*System) error {
	for _, sys := range systems {
		if sys.world != s.world {
			return eris.Wrapf(ErrForeignSystem, "system %q", sys.name)
		}
	}
	for _, sys := range systems {
		stage := 0
		for i, prev := range s.systems {
			if prev.access.Conflicts(sys.access) {
				stage = max(stage, s.stageOf[i]+1)
			}
		}
		s.systems = append(s.systems, sys)
		s.stageOf = append(s.stageOf, stage)
		if stage == len(s.stages) {
			s.stages = append(s.stages, nil)
		}
		s.stages[stage] = append(s.stages[stage], sys)
	}
	logSchedule(&s.logger, s.Stages())
	return nil
}

// Stages returns the system names of each stage.
func (s *Scheduler) Stages() [][]string {
	out := make([][]string, len(s.stages))
	for i, stage := range s.stages {
		for _, sys := range stage {
			out[i] = append(out[i], sys.name)
		}
	}
	return out
}

// Run executes every stage once. It stops before the next stage when ctx is
// done or a system fails; commands queued during the failing stage are still
// applied.
func (s *Scheduler) Run(ctx context.Context) error {
	for i, stage := range s.stages {
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "schedule stopped before stage %d", i)
		}
		err := s.runStage(ctx, stage)
		for _, sys := range stage {
			if ferr := sys.finish(); ferr != nil && err == nil {
				err = ferr
			}
		}
		if err != nil {
			s.logger.Error().Err(err).Int("stage", i).Msg("stage failed")
			return err
		}
	}
	return nil
}

func (s *Scheduler) runStage(ctx context.Context, stage []*System) error {
	if !s.parallel || len(stage) == 1 {
		for _, sys := range stage {
			if err := sys.execute(); err != nil {
				return err
			}
		}
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for _, sys := range stage {
		g.Go(sys.execute)
	}
	return g.Wait()
}
