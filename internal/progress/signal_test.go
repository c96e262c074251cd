package progress

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []int
}

func (r *recorder) record(v int) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recorder) trace() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func assertMonotonic(t *testing.T, trace []int) {
	t.Helper()
	for i, v := range trace {
		if v < Min || v > Max {
			t.Fatalf("value %d out of range in %v", v, trace)
		}
		if i > 0 && v < trace[i-1] {
			t.Fatalf("trace decreased: %v", trace)
		}
	}
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name       string
		publishes  []int
		wantTrace  []int
		wantLatest int
	}{
		{
			name:       "increasing",
			publishes:  []int{10, 20, 30},
			wantTrace:  []int{0, 10, 20, 30},
			wantLatest: 30,
		},
		{
			name:       "dropsDecreases",
			publishes:  []int{40, 20, 40, 50},
			wantTrace:  []int{0, 40, 50},
			wantLatest: 50,
		},
		{
			name:       "clampsRange",
			publishes:  []int{-5, 150, 120},
			wantTrace:  []int{0, 100},
			wantLatest: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := NewSignal()
			rec := &recorder{}
			sig.Subscribe(rec.record)

			for _, v := range tt.publishes {
				sig.Publish(v)
			}

			got := rec.trace()
			if len(got) != len(tt.wantTrace) {
				t.Fatalf("trace = %v, want %v", got, tt.wantTrace)
			}
			for i := range got {
				if got[i] != tt.wantTrace[i] {
					t.Fatalf("trace = %v, want %v", got, tt.wantTrace)
				}
			}
			if sig.Latest() != tt.wantLatest {
				t.Errorf("Latest() = %d, want %d", sig.Latest(), tt.wantLatest)
			}
		})
	}
}

func TestFreeze(t *testing.T) {
	sig := NewSignal()
	sig.Publish(30)
	sig.Freeze()

	if sig.Publish(100) {
		t.Error("Publish accepted after Freeze")
	}
	if sig.Latest() != 30 {
		t.Errorf("Latest() = %d, want 30", sig.Latest())
	}
	if !sig.Frozen() {
		t.Error("Frozen() = false")
	}
}

func TestSubscribeReceivesLatest(t *testing.T) {
	sig := NewSignal()
	sig.Publish(70)

	rec := &recorder{}
	unsubscribe := sig.Subscribe(rec.record)
	sig.Publish(80)
	unsubscribe()
	sig.Publish(90)

	got := rec.trace()
	if len(got) != 2 || got[0] != 70 || got[1] != 80 {
		t.Errorf("trace = %v, want [70 80]", got)
	}
}

func TestConcurrentPublishMonotonic(t *testing.T) {
	sig := NewSignal()
	rec := &recorder{}
	sig.Subscribe(rec.record)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for v := offset; v <= 100; v += 8 {
				sig.Publish(v)
			}
		}(i)
	}
	wg.Wait()

	assertMonotonic(t, rec.trace())
	if sig.Latest() != 100 {
		t.Errorf("Latest() = %d, want 100", sig.Latest())
	}
}

func TestSimulate(t *testing.T) {
	sig := NewSignal()
	rec := &recorder{}
	sig.Subscribe(rec.record)

	stop := Simulate(context.Background(), sig, 10, time.Millisecond, 90)

	deadline := time.Now().Add(2 * time.Second)
	for sig.Latest() < 90 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	if sig.Latest() != 90 {
		t.Fatalf("Latest() = %d, want 90", sig.Latest())
	}
	got := rec.trace()
	assertMonotonic(t, got)
	if got[len(got)-1] != 90 {
		t.Errorf("trace = %v", got)
	}
}

func TestSimulateStopJoins(t *testing.T) {
	sig := NewSignal()
	stop := Simulate(context.Background(), sig, 10, time.Millisecond, 90)
	time.Sleep(5 * time.Millisecond)
	stop()

	after := sig.Latest()
	time.Sleep(10 * time.Millisecond)
	if sig.Latest() != after {
		t.Errorf("tick landed after stop: %d -> %d", after, sig.Latest())
	}
	stop()
}

func TestSimulateHoldsBelowRealProgress(t *testing.T) {
	sig := NewSignal()
	sig.Publish(95)

	stop := Simulate(context.Background(), sig, 10, time.Millisecond, 90)
	time.Sleep(10 * time.Millisecond)
	stop()

	if sig.Latest() != 95 {
		t.Errorf("Latest() = %d, want 95", sig.Latest())
	}
}
