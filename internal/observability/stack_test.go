package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/fantasy-matchday/internal/config"
	"github.com/riskibarqy/fantasy-matchday/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	stack, err := Start(config.Config{ServiceName: "fantasy-matchday"}, base)
	if err != nil {
		t.Fatalf("start stack: %v", err)
	}
	if stack.Logger() != base {
		t.Fatalf("expected base logger without betterstack")
	}
	if len(stack.components) != 4 {
		t.Fatalf("unexpected components: got=%d want=4", len(stack.components))
	}
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown stack: %v", err)
	}
}

func TestStart_FailureNamesComponent(t *testing.T) {
	t.Parallel()

	_, err := Start(config.Config{PprofEnabled: true}, logging.NewNop())
	if err == nil || !strings.Contains(err.Error(), "init pprof") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStack_ShutdownReverseOrder(t *testing.T) {
	t.Parallel()

	var order []string
	stack := &Stack{logger: logging.NewNop()}
	for _, name := range []string{"betterstack", "uptrace", "pprof"} {
		stack.add(name, func(context.Context) error {
			order = append(order, name)
			if name == "uptrace" {
				return errors.New("exporter timeout")
			}
			return nil
		})
	}

	err := stack.Shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "stop uptrace: exporter timeout") {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
	if strings.Join(order, ",") != "pprof,uptrace,betterstack" {
		t.Fatalf("unexpected shutdown order: %v", order)
	}
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown should be a no-op: %v", err)
	}
}
