package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/storebot/core/logger"
)

// Seeder loads reference data once storage is ready.
type Seeder interface {
	Name() string
	Seed(ctx context.Context) error
}

type seederFunc struct {
	name string
	fn   func(context.Context) error
}

func (s seederFunc) Name() string                   { return s.name }
func (s seederFunc) Seed(ctx context.Context) error { return s.fn(ctx) }

// SeederFunc adapts fn to Seeder.
func SeederFunc(name string, fn func(context.Context) error) Seeder {
	return seederFunc{name: name, fn: fn}
}

// RunSeeders runs seeders in order and stops at the first failure.
func RunSeeders(ctx context.Context, seeders ...Seeder) error {
	log := logger.Component(logger.CompSeed)
	for _, s := range seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Seed(ctx); err != nil {
			logger.LogEvent(ctx, log, slog.LevelError, "db.seed",
				slog.String("seeder", s.Name()),
				slog.String("status", "fail"),
				slog.Any("err", err),
			)
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.LogEvent(ctx, log, slog.LevelInfo, "db.seed",
			slog.String("seeder", s.Name()),
			slog.String("status", "ok"),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return nil
}
