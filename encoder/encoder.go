package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16

	// Outbound chunk cadence. One chunk per interval, sized for 16-bit mono.
	ChunkMs      = 250
	ChunkSamples = SampleRate * ChunkMs / 1000
	ChunkBytes   = ChunkSamples * Channels * (BitsPerSample / 8)
)

// Encoder produces one encoded audio stream incrementally. EncodeBlock
// appends a block of samples; Flush returns the bytes produced since the
// previous Flush, so the concatenation of all flushes (plus a final flush
// after Close) is the complete stream. The first flush carries the stream
// header.
type Encoder interface {
	Format() string
	EncodeBlock(block []int16) error
	Flush() []byte
	TotalFrames() uint64
	Close() error
}

// New returns the preferred codec (FLAC) and falls back to uncompressed
// WAV when the FLAC encoder cannot be initialized.
func New() Encoder {
	if enc, err := NewFlac(); err == nil {
		return enc
	}
	return NewWav()
}
