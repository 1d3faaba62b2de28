package encoder

import (
	"encoding/binary"
	"testing"
)

func TestWavEncoderHeader(t *testing.T) {
	enc := NewWav()
	head := enc.Flush()

	if len(head) != wavHeaderSize {
		t.Fatalf("first flush = %d bytes, want %d", len(head), wavHeaderSize)
	}
	if string(head[0:4]) != "RIFF" || string(head[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(head[24:]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(head[22:]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
}

func TestWavEncoderRoundTrip(t *testing.T) {
	enc := NewWav()
	enc.Flush() // drop header

	block := []int16{0, 1, -1, 32767, -32768}
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	data := enc.Flush()
	if len(data) != len(block)*2 {
		t.Fatalf("flushed %d bytes, want %d", len(data), len(block)*2)
	}
	for i, want := range block {
		got := int16(binary.LittleEndian.Uint16(data[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
	if enc.TotalFrames() != uint64(len(block)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(block))
	}
}

func TestNewPrefersFlac(t *testing.T) {
	enc := New()
	if enc.Format() != "flac" {
		t.Errorf("Format = %q, want flac", enc.Format())
	}
}
