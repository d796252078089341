package safe

import (
	"testing"
	"time"
)

func TestGoRecoversPanic(t *testing.T) {
	done := Go(func() {
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}
}

func TestGoRuns(t *testing.T) {
	ran := false
	<-Go(func() {
		ran = true
	})
	if !ran {
		t.Fatal("function did not run")
	}
}
