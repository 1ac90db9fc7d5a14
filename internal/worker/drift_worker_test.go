package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ayo6706/booking-billing/internal/service"
	"github.com/ayo6706/booking-billing/internal/testutil/fakeledger"
	"github.com/stretchr/testify/assert"
)

func TestDriftWorker_StartStop(t *testing.T) {
	svc := service.NewDriftService(fakeledger.New())
	w := NewDriftWorker(svc).WithInterval(10 * time.Millisecond)

	stop := w.Run(context.Background())

	done := make(chan struct{})
	go func() {
		stop()
		stop() // idempotent
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
}

func TestDriftWorker_ContextCancel(t *testing.T) {
	svc := service.NewDriftService(fakeledger.New())
	w := NewDriftWorker(svc).WithInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(finished)
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit on context cancel")
	}
}

func TestDriftWorker_IntervalFloor(t *testing.T) {
	svc := service.NewDriftService(fakeledger.New())
	w := NewDriftWorker(svc).WithInterval(0)
	assert.Equal(t, 24*time.Hour, w.interval)
}
