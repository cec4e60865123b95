package mailer

import (
	"context"
	"sync"
)

// Sent is a notification captured by Recorder.
type Sent struct {
	Kind  string
	Name  string
	Email string
	Code  string
}

// Recorder is an in-memory Notifier for tests. It keeps every notification so
// a test can read back the code that was mailed to an address.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent

	// Err, when set, is returned from every send after recording it.
	Err error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendVerification(_ context.Context, name, email, code string) error {
	return r.record(Sent{Kind: TemplateVerification, Name: name, Email: email, Code: code})
}

func (r *Recorder) SendVerified(_ context.Context, name, email string) error {
	return r.record(Sent{Kind: TemplateVerified, Name: name, Email: email})
}

func (r *Recorder) SendPasswordReset(_ context.Context, email, code string) error {
	return r.record(Sent{Kind: TemplatePasswordReset, Email: email, Code: code})
}

// Sent returns a copy of every recorded notification.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// LastCode returns the most recent code mailed to email, or "" if none.
func (r *Recorder) LastCode(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Email == email && r.sent[i].Code != "" {
			return r.sent[i].Code
		}
	}
	return ""
}

// Count returns how many notifications of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) record(s Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
	return r.Err
}
