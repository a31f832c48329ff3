package phone

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/models"
)

// flow is one run of the phone verification state machine.
type flow struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan models.PhoneAuthCred

	mu     sync.Mutex
	last   *models.PhoneAuthCred
	resend *int
	closed bool
}

// newFlow keeps the values of parent but not its cancellation: the flow
// outlives the call that started it.
func newFlow(parent context.Context, buffer int) *flow {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	return &flow{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan models.PhoneAuthCred, buffer),
	}
}

// emit delivers ev unless the flow is over. It reports whether ev was sent.
func (f *flow) emit(ev models.PhoneAuthCred) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.ctx.Err() != nil {
		return false
	}

	if ev.ResendToken != nil {
		t := *ev.ResendToken
		f.resend = &t
	}

	select {
	case f.events <- ev:
		// Failure events carry no verification id to verify against.
		if ev.Err == nil {
			f.last = &ev
		}
		return true
	case <-f.ctx.Done():
		return false
	}
}

// fail emits the terminal failure event and closes the flow.
func (f *flow) fail(err error) {
	f.mu.Lock()
	resend := f.resend
	f.mu.Unlock()

	f.emit(models.PhoneAuthCred{Err: err, ResendToken: resend})
	f.close()
}

// close cancels the flow and closes its stream once.
func (f *flow) close() {
	f.cancel()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}

func (f *flow) lastEvent() (models.PhoneAuthCred, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return models.PhoneAuthCred{}, false
	}
	return *f.last, true
}

func (f *flow) resendToken() *int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resend == nil {
		return nil
	}
	t := *f.resend
	return &t
}
