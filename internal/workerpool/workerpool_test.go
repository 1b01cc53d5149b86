package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/searchd/internal/testutil"
)

func TestPool_RunsAllSubmittedJobs(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	p := New(4)
	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()
	p.Close()

	assert.EqualValues(t, 100, count)
}

func TestPool_CloseWaitsForInFlightJobs(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	p := New(1)
	var done int32
	p.Submit(func() {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
	})
	p.Close()

	assert.EqualValues(t, 1, atomic.LoadInt32(&done))
}

func TestPool_SubmitAfterClosePanics(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	p := New(2)
	p.Close()

	assert.Panics(t, func() {
		p.Submit(func() {})
	})
}
