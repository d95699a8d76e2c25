package notifymock

import (
	"context"
	"sync"

	"flexemi-backend/internal/domain/notification"
)

var _ notification.Notifier = (*Recorder)(nil)

// Recorder keeps every message it is handed.
type Recorder struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (r *Recorder) Notify(_ context.Context, msg notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Messages() []notification.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// To returns the subjects sent to addr, in order.
func (r *Recorder) To(addr string) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.To == addr {
			out = append(out, m.Subject)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
