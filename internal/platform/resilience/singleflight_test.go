package resilience

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	t.Parallel()

	var g SingleFlight[string]
	var counter int32
	var sharedCount int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			<-start
			val, shared, err := g.Do("scoring:pass:Bundesliga", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil || val != "ok" {
				t.Errorf("unexpected result: val=%q err=%v", val, err)
			}
			if shared {
				atomic.AddInt32(&sharedCount, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("unexpected runs: got=%d want=1", got)
	}
	if got := atomic.LoadInt32(&sharedCount); got != workers-1 {
		t.Fatalf("unexpected shared results: got=%d want=%d", got, workers-1)
	}
	if g.InFlight("scoring:pass:Bundesliga") {
		t.Fatalf("call must be forgotten after it returns")
	}
}

func TestSingleFlight_SeparateKeys(t *testing.T) {
	t.Parallel()

	var g SingleFlight[int]
	release := make(chan struct{})
	entered := make(chan struct{})

	go func() {
		_, _, _ = g.Do("scoring:pass:A", func() (int, error) {
			close(entered)
			<-release
			return 1, nil
		})
	}()
	<-entered

	val, shared, err := g.Do("scoring:held:A", func() (int, error) { return 2, nil })
	close(release)

	if err != nil || shared || val != 2 {
		t.Fatalf("unexpected result for second key: val=%d shared=%v err=%v", val, shared, err)
	}
}

func TestSingleFlight_PanicReleasesWaiters(t *testing.T) {
	t.Parallel()

	var g SingleFlight[int]
	entered := make(chan struct{})
	release := make(chan struct{})
	panicked := make(chan any, 1)

	go func() {
		defer func() { panicked <- recover() }()
		_, _, _ = g.Do("feed", func() (int, error) {
			close(entered)
			<-release
			panic("boom")
		})
	}()
	<-entered

	joined := make(chan error, 1)
	go func() {
		_, _, err := g.Do("feed", func() (int, error) { return 0, nil })
		joined <- err
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)

	if rec := <-panicked; rec == nil {
		t.Fatalf("expected the panic to reach the caller that started the call")
	}
	select {
	case err := <-joined:
		// A joiner that arrived after the panic ran its own call and succeeds.
		if err != nil && !strings.Contains(err.Error(), "panicked") {
			t.Fatalf("unexpected joined error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("joined caller hung after panic")
	}
}
