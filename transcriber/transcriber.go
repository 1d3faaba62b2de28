// Package transcriber maintains the connection to the captioning backend:
// one websocket per recording session carrying encoded audio chunks out and
// pipe-delimited transcript messages in, plus plain HTTP for the recorded
// artifact.
package transcriber

import (
	"livecap/encoder"
	"livecap/transcript"
)

// Session is one live captioning exchange. Feed accepts raw PCM16 from the
// capture callback; parsed transcript messages arrive on Updates. Close
// flushes buffered audio, tears the socket down, and reports stats.
type Session interface {
	Feed(pcm []byte)
	Updates() <-chan transcript.Message
	Close() (SessionStats, error)
}

type SessionStats struct {
	Codec         string
	ConnectMs     float64
	SentChunks    int
	SentKB        float64
	DroppedChunks int
	RecvMessages  int
	RecvFinal     int
	RecvInterim   int
	TotalMs       float64
	AudioS        float64
}

func audioSeconds(frames uint64) float64 {
	return float64(frames) / float64(encoder.SampleRate)
}
