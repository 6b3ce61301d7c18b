// Package internal holds small concurrency primitives shared by Worker and
// Pool: a channel-based "done" signal and a generic dispatch pool.
package internal

import "sync"

// DoneChan is closed exactly once, when whatever it represents finishes.
type DoneChan chan struct{}

// DoneFunc starts an asynchronous shutdown and returns a channel that
// closes once it completes.
type DoneFunc func() DoneChan

// WrapWaitGroup returns a DoneChan that closes once wg.Wait returns.
func WrapWaitGroup(wg *sync.WaitGroup) DoneChan {
	ret := make(DoneChan)
	go func() {
		wg.Wait()
		close(ret)
	}()
	return ret
}

// Combine returns a DoneChan that closes once both first and second have.
func Combine(first DoneChan, second DoneChan) DoneChan {
	ret := make(DoneChan)
	go func() {
		<-first
		<-second
		close(ret)
	}()
	return ret
}
