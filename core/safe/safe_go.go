package safe

import (
	"github.com/rambollwong/rainbowlog"
	"github.com/rambollwong/rainbowsock/log"
)

// Go executes f in a goroutine, recovering any panic and logging it with the root logger.
// The returned channel is closed once f has returned or panicked.
func Go(f func()) <-chan struct{} {
	return LoggerGo(log.Logger, f)
}

// LoggerGo executes f in a goroutine, recovering any panic and logging it with logger.
// The returned channel is closed once f has returned or panicked.
func LoggerGo(logger *rainbowlog.Logger, f func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if err := recover(); err != nil {
				logger.Error().Msgf("panic: %+v", err).Done()
			}
		}()
		f()
	}()
	return done
}
