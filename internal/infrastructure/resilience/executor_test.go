package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

var errFlaky = errors.New("flaky")

func fastConfig(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func failTimes(n int, err error) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestExecuteRetryBudget(t *testing.T) {
	cases := []struct {
		name      string
		failures  int
		class     ErrorClassification
		wantCalls int
		wantErr   bool
	}{
		{"recovers after transient failures", 2, Transient, 3, false},
		{"gives up when attempts run out", 5, Transient, 3, true},
		{"permanent failure is not retried", 5, Ignored, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn, calls := failTimes(tc.failures, errFlaky)
			err := NewExecutor(fastConfig(3)).Execute(context.Background(), "qdrant.query.dense", fn,
				func(error) ErrorClassification { return tc.class })
			if (err != nil) != tc.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, errFlaky) {
				t.Fatalf("expected last attempt error, got %v", err)
			}
			if *calls != tc.wantCalls {
				t.Fatalf("expected %d calls, got %d", tc.wantCalls, *calls)
			}
		})
	}
}

func TestExecuteStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.RetryInitialBackoff = time.Hour
	cfg.RetryMaxBackoff = time.Hour

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- NewExecutor(cfg).Execute(ctx, "ollama.embed", func(context.Context) error {
			calls++
			return errFlaky
		}, func(error) ErrorClassification { return Transient })
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected an error")
		}
	case <-time.After(time.Second):
		t.Fatalf("executor kept waiting after cancellation")
	}
	if calls > 1 {
		t.Fatalf("expected at most one call, got %d", calls)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	cfg := fastConfig(1)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = 50 * time.Millisecond
	cfg.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(cfg)

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "openrouter.chat_completion", func(context.Context) error {
			return errFlaky
		}, nil)
		if !errors.Is(err, errFlaky) {
			t.Fatalf("expected upstream error on call %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "openrouter.chat_completion", func(context.Context) error {
		t.Fatalf("open circuit must not call the operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}

	// Breakers are per operation.
	if err := exec.Execute(context.Background(), "ollama.embed", func(context.Context) error { return nil }, nil); err != nil {
		t.Fatalf("unrelated operation should pass, got %v", err)
	}
}

func TestNilExecutorRunsOnce(t *testing.T) {
	var exec *Executor
	fn, calls := failTimes(1, errFlaky)
	if err := exec.Execute(context.Background(), "op", fn, nil); !errors.Is(err, errFlaky) {
		t.Fatalf("expected first failure, got %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected one call, got %d", *calls)
	}
}

func TestCallReturnsValue(t *testing.T) {
	attempt := 0
	got, err := Call(context.Background(), NewExecutor(fastConfig(2)), "ollama.generate",
		func(context.Context) (string, error) {
			attempt++
			if attempt == 1 {
				return "", errFlaky
			}
			return "answer", nil
		}, func(error) ErrorClassification { return Transient })
	if err != nil || got != "answer" {
		t.Fatalf("Call() = %q, %v", got, err)
	}
}

func TestBackoffScheduleIsCapped(t *testing.T) {
	exec := NewExecutor(Config{
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     250 * time.Millisecond,
		RetryMultiplier:     2,
	})
	next := exec.backoffSchedule()
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}
	for i, w := range want {
		if got := next(); got != w {
			t.Fatalf("wait %d = %s, want %s", i, got, w)
		}
	}
}

type observerStub struct {
	retries []string
	states  []string
}

func (o *observerStub) ObserveRetry(operation string) {
	o.retries = append(o.retries, operation)
}

func (o *observerStub) ObserveBreakerState(_ string, state string) {
	o.states = append(o.states, state)
}

func TestExecuteReportsRetriesAndBreakerTransitions(t *testing.T) {
	observer := &observerStub{}
	cfg := fastConfig(2)
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 1
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(cfg).WithObserver(observer)

	err := exec.Execute(context.Background(), "qdrant.query.dense", func(context.Context) error {
		return errFlaky
	}, func(error) ErrorClassification { return Transient })
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(observer.retries) != 1 || observer.retries[0] != "qdrant.query.dense" {
		t.Fatalf("expected one observed retry, got %v", observer.retries)
	}
	if len(observer.states) != 1 || observer.states[0] != gobreaker.StateOpen.String() {
		t.Fatalf("expected breaker to open, got %v", observer.states)
	}
}
