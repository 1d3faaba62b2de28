package encoder

import (
	"bytes"
	"encoding/binary"
	"sync"
)

const wavHeaderSize = 44

// WavEncoder is the fallback codec: a RIFF header followed by raw PCM16.
// The header's size fields are zero because the stream length is unknown
// while live; readers fall back to EOF.
type WavEncoder struct {
	buf         bytes.Buffer
	flushed     int
	totalFrames uint64
	mu          sync.Mutex
}

func NewWav() *WavEncoder {
	e := &WavEncoder{}
	e.buf.Write(wavHeader())
	return e
}

func wavHeader() []byte {
	const bytesPerSample = BitsPerSample / 8
	h := make([]byte, wavHeaderSize)
	copy(h[0:4], "RIFF")
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:], Channels)
	binary.LittleEndian.PutUint32(h[24:], SampleRate)
	binary.LittleEndian.PutUint32(h[28:], SampleRate*Channels*bytesPerSample)
	binary.LittleEndian.PutUint16(h[32:], Channels*bytesPerSample)
	binary.LittleEndian.PutUint16(h[34:], BitsPerSample)
	copy(h[36:40], "data")
	return h
}

func (e *WavEncoder) Format() string { return "wav" }

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pcm := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	e.buf.Write(pcm)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Flush() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	all := e.buf.Bytes()
	if e.flushed >= len(all) {
		return nil
	}
	out := make([]byte, len(all)-e.flushed)
	copy(out, all[e.flushed:])
	e.flushed = len(all)
	return out
}

func (e *WavEncoder) Close() error { return nil }

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}
