package submission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyIsDeliveredExactlyOnce(t *testing.T) {
	s := New("job-1", "0xAb", "0xab", 50, false)

	var wins int
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(code int) {
			defer wg.Done()
			if s.Reply(Reply{StatusCode: code}) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(200 + i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, s.Done())
}

func TestReplyCancelsBothTimers(t *testing.T) {
	s := New("job-1", "0xAb", "0xab", 50, false)

	var failsafeCancelled, ackCancelled bool
	s.ArmTimers(func() { failsafeCancelled = true }, func() { ackCancelled = true })

	s.Reply(Reply{StatusCode: 200})

	assert.True(t, failsafeCancelled)
	assert.True(t, ackCancelled)
}

func TestWaitBlocksUntilReply(t *testing.T) {
	s := New("job-1", "0xAb", "0xab", 50, false)

	done := make(chan Reply, 1)
	go func() {
		done <- s.Wait()
	}()

	assert.False(t, s.Done())
	s.Reply(Reply{StatusCode: 202, Body: map[string]any{"ok": true}})

	r := <-done
	assert.Equal(t, 202, r.StatusCode)
}
