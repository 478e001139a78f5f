package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fantasy-matchday/internal/config"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

type stopFunc func(context.Context) error

func noopStop(context.Context) error { return nil }

type component struct {
	name string
	stop stopFunc
}

// Stack is the set of telemetry sinks the process runs with.
type Stack struct {
	logger     *logging.Logger
	components []component
}

// Start brings up log shipping first so the remaining sinks log through it. On failure every
// sink already started is stopped again.
func Start(cfg config.Config, base *logging.Logger) (*Stack, error) {
	logger, stopLogs, err := InitBetterStackLogger(cfg, base)
	if err != nil {
		return nil, fmt.Errorf("init betterstack: %w", err)
	}
	s := &Stack{logger: logger}
	s.add("betterstack", stopLogs)

	starters := []struct {
		name  string
		start func(config.Config, *logging.Logger) (stopFunc, error)
	}{
		{name: "uptrace", start: InitUptrace},
		{name: "pyroscope", start: InitPyroscope},
		{name: "pprof", start: StartPprofServer},
	}
	for _, st := range starters {
		stop, err := st.start(cfg, logger)
		if err != nil {
			_ = s.Shutdown(context.Background())
			return nil, fmt.Errorf("init %s: %w", st.name, err)
		}
		s.add(st.name, stop)
	}
	return s, nil
}

func (s *Stack) add(name string, stop stopFunc) {
	s.components = append(s.components, component{name: name, stop: stop})
}

func (s *Stack) Logger() *logging.Logger {
	return s.logger
}

// Shutdown stops the sinks in reverse start order and keeps going past failures.
func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.components) - 1; i >= 0; i-- {
		c := s.components[i]
		if err := c.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.name, err))
		}
	}
	s.components = nil
	return errors.Join(errs...)
}
