package audio

import "strings"

const WAVHeaderSize = 44

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type DataCallback func(data []byte, frameCount uint32)

// CaptureConfig describes a capture request. Zero values mean "whatever the
// device prefers"; Processing asks the platform for echo cancellation, noise
// suppression and automatic gain where it supports them.
type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
	Processing bool
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// OpenCapture requests a capture stream with the preferred config and, when
// the platform rejects it, retries once with an unconstrained one. Both
// errors are reported if the fallback fails too.
func OpenCapture(ctx Context, device *DeviceInfo, preferred CaptureConfig) (CaptureDevice, error) {
	dev, err := ctx.NewCapture(device, preferred)
	if err == nil {
		return dev, nil
	}
	dev, fbErr := ctx.NewCapture(device, CaptureConfig{})
	if fbErr != nil {
		return nil, errFallback{preferred: err, fallback: fbErr}
	}
	return dev, nil
}

type errFallback struct {
	preferred error
	fallback  error
}

func (e errFallback) Error() string {
	return "capture open: " + e.preferred.Error() + " (fallback: " + e.fallback.Error() + ")"
}

func (e errFallback) Unwrap() error { return e.fallback }
