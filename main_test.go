package main

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestShutdownChannelNeverBlocksSenders(t *testing.T) {
	errChannel := newShutdownChannel()

	var wg sync.WaitGroup
	for i := 0; i < shutdownSenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errChannel <- errors.New("stopped")
		}()
	}

	// main reads only the first error
	<-errChannel

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a sender blocked after the first error was received")
	}
}
