package audio

import (
	"errors"
	"strings"
	"testing"
)

type stubContext struct {
	devices         []DeviceInfo
	devErr          error
	rejectPreferred bool
	rejectAll       bool
	calls           []CaptureConfig
}

func (s *stubContext) Devices() ([]DeviceInfo, error) { return s.devices, s.devErr }
func (s *stubContext) Close()                         {}

func (s *stubContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	s.calls = append(s.calls, config)
	if s.rejectAll {
		return nil, errors.New("no device")
	}
	if s.rejectPreferred && config != (CaptureConfig{}) {
		return nil, errors.New("constraints not satisfiable")
	}
	return &FakeCapture{audioDone: make(chan struct{})}, nil
}

func TestOpenCapturePreferred(t *testing.T) {
	ctx := &stubContext{}
	preferred := CaptureConfig{SampleRate: 16000, Channels: 1, Processing: true}

	dev, err := OpenCapture(ctx, nil, preferred)
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	if dev == nil {
		t.Fatal("nil device")
	}
	if len(ctx.calls) != 1 || ctx.calls[0] != preferred {
		t.Errorf("calls = %+v, want one preferred request", ctx.calls)
	}
}

func TestOpenCaptureFallsBack(t *testing.T) {
	ctx := &stubContext{rejectPreferred: true}

	dev, err := OpenCapture(ctx, nil, CaptureConfig{SampleRate: 16000, Channels: 1, Processing: true})
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	if dev == nil {
		t.Fatal("nil device")
	}
	if len(ctx.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(ctx.calls))
	}
	if ctx.calls[1] != (CaptureConfig{}) {
		t.Errorf("fallback call = %+v, want unconstrained", ctx.calls[1])
	}
}

func TestOpenCaptureBothFail(t *testing.T) {
	ctx := &stubContext{rejectAll: true}
	if _, err := OpenCapture(ctx, nil, CaptureConfig{SampleRate: 16000}); err == nil {
		t.Fatal("expected error when both requests fail")
	}
}

func TestFakeCaptureReplay(t *testing.T) {
	pcm := make([]byte, fakeFrameSize*fakeBytesPerFrame*3)
	ctx := NewFakeContextPCM(pcm, false)

	dev, err := ctx.NewCapture(nil, CaptureConfig{})
	if err != nil {
		t.Fatal(err)
	}

	var got int
	dev.SetCallback(func(data []byte, _ uint32) {
		got += len(data)
	})
	if err := dev.Start(); err != nil {
		t.Fatal(err)
	}
	<-dev.(*FakeCapture).AudioDone()
	dev.Stop()
	dev.ClearCallback()

	if got < len(pcm) {
		t.Errorf("callback saw %d bytes, want >= %d", got, len(pcm))
	}
}

func TestSelectDeviceNoDevices(t *testing.T) {
	// With nothing to choose between the picker never prompts and the
	// caller falls through to the system default.
	dev, err := SelectDevice(&stubContext{})
	if err != nil {
		t.Fatalf("SelectDevice: %v", err)
	}
	if dev != nil {
		t.Errorf("dev = %+v, want nil (system default)", dev)
	}
}

func TestSelectDeviceEnumerationError(t *testing.T) {
	ctx := &stubContext{devErr: errors.New("daemon unreachable")}
	if _, err := SelectDevice(ctx); err == nil {
		t.Fatal("expected error when enumeration fails")
	}
}

func TestDeviceLabel(t *testing.T) {
	bt := deviceLabel(DeviceInfo{Name: "AirPods Pro"})
	if !strings.Contains(bt, "bluetooth") {
		t.Errorf("label %q missing bluetooth warning", bt)
	}
	plain := deviceLabel(DeviceInfo{Name: "Built-in Microphone"})
	if plain != "Built-in Microphone" {
		t.Errorf("label %q, want plain name", plain)
	}
}

func TestIsBluetooth(t *testing.T) {
	if !IsBluetooth("Sony WH-1000XM4") {
		t.Error("Sony WH-1000XM4 should be bluetooth")
	}
	if IsBluetooth("Built-in Microphone") {
		t.Error("built-in mic is not bluetooth")
	}
}
