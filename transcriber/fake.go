package transcriber

import (
	"context"
	"sync"

	"livecap/encoder"
	"livecap/transcript"
)

// Dialer creates sessions. Satisfied by Client and by Fake in tests.
type Dialer interface {
	NewSession(ctx context.Context) Session
}

// Fake scripts a backend: every session delivers Script once audio arrives
// and returns Err from Close.
type Fake struct {
	Script []transcript.Message
	Err    error

	mu       sync.Mutex
	sessions []*FakeSession
}

func NewFake(script []transcript.Message, err error) *Fake {
	return &Fake{Script: script, Err: err}
}

func (f *Fake) NewSession(context.Context) Session {
	s := &FakeSession{
		script:   f.Script,
		closeErr: f.Err,
		updates:  make(chan transcript.Message, len(f.Script)+1),
	}
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s
}

// Sessions returns every session handed out so far.
func (f *Fake) Sessions() []*FakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeSession(nil), f.sessions...)
}

type FakeSession struct {
	script   []transcript.Message
	closeErr error
	updates  chan transcript.Message
	deliver  sync.Once

	mu       sync.Mutex
	fedBytes int
	closed   bool
}

func (s *FakeSession) Feed(pcm []byte) {
	s.mu.Lock()
	s.fedBytes += len(pcm)
	s.mu.Unlock()

	// Script plays back on first audio, like a backend that answers once
	// it hears something.
	s.deliver.Do(func() {
		for _, m := range s.script {
			s.updates <- m
		}
	})
}

func (s *FakeSession) Updates() <-chan transcript.Message {
	return s.updates
}

func (s *FakeSession) Close() (SessionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return SessionStats{Codec: "fake"}, s.closeErr
	}
	s.closed = true
	s.deliver.Do(func() {})
	close(s.updates)
	return SessionStats{
		Codec:      "fake",
		SentChunks: s.fedBytes / encoder.ChunkBytes,
		SentKB:     float64(s.fedBytes) / 1024,
		AudioS:     audioSeconds(uint64(s.fedBytes / 2)),
	}, s.closeErr
}

// FedBytes reports how much PCM the session has received.
func (s *FakeSession) FedBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fedBytes
}

// Closed reports whether Close has been called.
func (s *FakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
