package redis

import (
	"context"
	"errors"

	"github.com/kailas-cloud/searchd/internal/db"
	"github.com/kailas-cloud/searchd/internal/errorstats"
)

var errEmptyCommand = errors.New("empty command")

// ErrorStats reads INFO errorstats and returns the per-code counters.
func (s *Store) ErrorStats(ctx context.Context) (map[string]uint64, error) {
	info, err := s.do(ctx, s.b().Info().Section("errorstats").Build()).ToString()
	if err != nil {
		return nil, &db.Error{Op: db.OpInfo, Err: err}
	}
	return errorstats.ParseInfo(info), nil
}

// ResetStats clears the server's error statistics with CONFIG RESETSTAT.
func (s *Store) ResetStats(ctx context.Context) error {
	if err := s.do(ctx, s.b().ConfigResetstat().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpResetStat, Err: err}
	}
	return nil
}

// Exec sends args as a raw command and discards the reply.
func (s *Store) Exec(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return errEmptyCommand
	}
	cmd := s.b().Arbitrary(args[0]).Args(args[1:]...).Build()
	return s.do(ctx, cmd).Error()
}
