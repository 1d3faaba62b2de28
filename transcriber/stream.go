package transcriber

import (
	"encoding/binary"
	"sync"
	"time"

	"livecap/encoder"
	"livecap/transcript"
)

const (
	sendQueueLen     = 64
	recvDrainTimeout = 2 * time.Second
)

// rawStream is the bare socket under a session. Send forwards one encoded
// chunk, Recv blocks for one inbound text message.
type rawStream interface {
	Send(chunk []byte) error
	Recv() (string, error)
	Close() error
}

type streamSession struct {
	ws        rawStream
	enc       encoder.Encoder
	audioCh   chan []byte
	updates   chan transcript.Message
	done      chan struct{} // closed when the session is torn down
	startedAt time.Time
	connected chan struct{} // closed when the socket is ready (or failed)
	sendDone  chan struct{}
	recvDone  chan struct{}
	doneOnce  sync.Once

	feedMu  sync.Mutex
	feedBuf []byte

	mu      sync.Mutex
	err     error
	errOnce sync.Once
	closing bool
	stats   streamStats
}

type streamStats struct {
	ConnectDur    time.Duration
	SentChunks    int
	SentBytes     uint64
	DroppedChunks int
	RecvMessages  int
	RecvFinal     int
	RecvInterim   int
}

func newStreamSession(dial func() (rawStream, error)) *streamSession {
	s := &streamSession{
		enc:       encoder.New(),
		audioCh:   make(chan []byte, sendQueueLen),
		updates:   make(chan transcript.Message, 16),
		done:      make(chan struct{}),
		startedAt: time.Now(),
		connected: make(chan struct{}),
		sendDone:  make(chan struct{}),
		recvDone:  make(chan struct{}),
	}

	go func() {
		connectStart := time.Now()
		ws, err := dial()
		s.mu.Lock()
		s.stats.ConnectDur = time.Since(connectStart)
		s.mu.Unlock()

		if err != nil {
			s.setErr(err)
			close(s.sendDone)
			close(s.recvDone)
			close(s.updates)
			close(s.connected)
			return
		}

		s.ws = ws
		close(s.connected)
		go s.runSender()
		go s.runReceiver()
	}()

	return s
}

// Feed accepts raw PCM16 and emits one encoded chunk per full interval of
// buffered samples. Chunks that cannot be queued are dropped silently.
func (s *streamSession) Feed(pcm []byte) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.feedMu.Lock()
	s.feedBuf = append(s.feedBuf, pcm...)
	var payloads [][]byte
	for len(s.feedBuf) >= encoder.ChunkBytes {
		payload, err := s.encodeChunk(s.feedBuf[:encoder.ChunkBytes])
		s.feedBuf = s.feedBuf[encoder.ChunkBytes:]
		if err != nil {
			s.setErr(err)
			break
		}
		if len(payload) > 0 {
			payloads = append(payloads, payload)
		}
	}
	s.feedMu.Unlock()

	for _, p := range payloads {
		s.enqueue(p)
	}
}

func (s *streamSession) encodeChunk(pcm []byte) ([]byte, error) {
	block := make([]int16, len(pcm)/2)
	for i := range block {
		block[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	if err := s.enc.EncodeBlock(block); err != nil {
		return nil, err
	}
	return s.enc.Flush(), nil
}

func (s *streamSession) enqueue(chunk []byte) {
	select {
	case s.audioCh <- chunk:
	default:
		s.mu.Lock()
		s.stats.DroppedChunks++
		s.mu.Unlock()
	}
}

func (s *streamSession) Updates() <-chan transcript.Message {
	return s.updates
}

func (s *streamSession) Close() (SessionStats, error) {
	<-s.connected
	defer s.doneOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	connErr := s.err
	closedAlready := s.closing
	s.mu.Unlock()

	if s.ws == nil || closedAlready {
		return s.snapshotStats(), connErr
	}

	// Flush the buffered tail and the encoder trailer as a last chunk.
	s.feedMu.Lock()
	tail := s.feedBuf
	s.feedBuf = nil
	if len(tail) > 0 {
		if payload, err := s.encodeChunk(tail); err == nil && len(payload) > 0 {
			s.enqueue(payload)
		}
	}
	if err := s.enc.Close(); err == nil {
		if trailer := s.enc.Flush(); len(trailer) > 0 {
			s.enqueue(trailer)
		}
	}
	s.feedMu.Unlock()

	close(s.audioCh)
	<-s.sendDone

	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.ws.Close()

	select {
	case <-s.recvDone:
	case <-time.After(recvDrainTimeout):
		s.doneOnce.Do(func() { close(s.done) })
		<-s.recvDone
	}

	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	return s.snapshotStats(), err
}

func (s *streamSession) runSender() {
	defer close(s.sendDone)
	for chunk := range s.audioCh {
		if err := s.ws.Send(chunk); err != nil {
			s.setErr(err)
			return
		}
		s.mu.Lock()
		s.stats.SentChunks++
		s.stats.SentBytes += uint64(len(chunk))
		s.mu.Unlock()
	}
}

func (s *streamSession) runReceiver() {
	defer close(s.recvDone)
	defer close(s.updates)
	for {
		raw, err := s.ws.Recv()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if !closing {
				s.setErr(err)
			}
			return
		}

		msg, ok := transcript.Parse(raw)
		s.mu.Lock()
		s.stats.RecvMessages++
		if ok {
			if msg.Final() {
				s.stats.RecvFinal++
			} else {
				s.stats.RecvInterim++
			}
		}
		s.mu.Unlock()
		if !ok {
			continue
		}

		select {
		case s.updates <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *streamSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		if s.ws != nil {
			s.ws.Close()
		}
	})
}

func (s *streamSession) snapshotStats() SessionStats {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()
	return SessionStats{
		Codec:         s.enc.Format(),
		ConnectMs:     float64(st.ConnectDur.Milliseconds()),
		SentChunks:    st.SentChunks,
		SentKB:        float64(st.SentBytes) / 1024,
		DroppedChunks: st.DroppedChunks,
		RecvMessages:  st.RecvMessages,
		RecvFinal:     st.RecvFinal,
		RecvInterim:   st.RecvInterim,
		TotalMs:       float64(time.Since(s.startedAt).Milliseconds()),
		AudioS:        audioSeconds(s.enc.TotalFrames()),
	}
}
