package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bmizerany/assert"
)

func TestTickSkipsWhileRunning(t *testing.T) {
	var (
		calls   int
		started = make(chan struct{})
		release = make(chan struct{})
	)

	job := &BaseJob{Name: "test", OnWork: func(ctx context.Context) error {
		calls++
		if calls == 1 {
			close(started)
			<-release
		}
		return nil
	}}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = job.Tick(context.Background())
	}()

	<-started
	assert.Equal(t, nil, job.Tick(context.Background()))
	close(release)
	wg.Wait()
	assert.Equal(t, 1, calls)

	assert.Equal(t, nil, job.Tick(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestTickReturnsError(t *testing.T) {
	boom := errors.New("boom")
	job := &BaseJob{OnWork: func(ctx context.Context) error { return boom }}
	assert.Equal(t, boom, job.Tick(context.Background()))
}

func TestRun(t *testing.T) {
	job := &BaseJob{Spec: "not a spec", OnWork: func(ctx context.Context) error { return nil }}
	assert.NotEqual(t, nil, job.Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job = &BaseJob{Spec: "@every 1h", OnWork: func(ctx context.Context) error { return nil }}
	assert.Equal(t, nil, job.Run(ctx))
}
