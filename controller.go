package main

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"sync"
	"time"

	"livecap/audio"
	"livecap/log"
	"livecap/transcriber"
	"livecap/transcript"
)

var activeDialer transcriber.Dialer

var transcriptMu sync.Mutex
var captions transcript.Log

const recordTail = 500 * time.Millisecond

var stopMu sync.Mutex
var stopChan chan struct{}

// Stop is signalled by closing the channel, so a stop fired before the
// recording's watcher is listening (the device may still be opening) is
// seen once it does listen.
func newStop() <-chan struct{} {
	stopMu.Lock()
	stopChan = make(chan struct{})
	ch := stopChan
	stopMu.Unlock()
	return ch
}

func fireStop() {
	stopMu.Lock()
	if stopChan != nil {
		select {
		case <-stopChan: // already fired
		default:
			close(stopChan)
		}
	}
	stopMu.Unlock()
}

func entryCount() int {
	transcriptMu.Lock()
	defer transcriptMu.Unlock()
	return captions.Len()
}

func reportRecordingError(err error) {
	if err == nil {
		return
	}
	log.Errorf("recording error: %v", err)
	tuiSend(ErrorMsg{Text: err.Error()})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix + " (ctrl+g)"
}

// levelTracker folds capture-callback RMS readings into per-tick speech
// flags for the silence monitor.
type levelTracker struct {
	mu     sync.Mutex
	speech bool
}

func (t *levelTracker) Observe(rms float64) {
	if rms < speechRMS {
		return
	}
	t.mu.Lock()
	t.speech = true
	t.mu.Unlock()
}

func (t *levelTracker) TickHadSpeech() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.speech
	t.speech = false
	return s
}

// handleRecording runs one full recording: opens a session, pumps captured
// audio into it until stop fires, then tears everything down and reports
// stream metrics. Blocks until the session is fully closed.
func handleRecording(capture audio.CaptureDevice, stop <-chan struct{}) error {
	sess := activeDialer.NewSession(context.Background())

	updatesDone := make(chan struct{})
	go func() {
		defer close(updatesDone)
		for m := range sess.Updates() {
			transcriptMu.Lock()
			entry, final := captions.Apply(m)
			transcriptMu.Unlock()

			tuiSend(PreviewMsg{Text: m.Text, Speaker: m.Speaker})
			if final {
				tuiSend(EntryMsg{Entry: entry})
				log.EntryLine(entry.Speaker, entry.Text)
			}
		}
	}()

	recErr := record(capture, stop, sess)

	stats, closeErr := sess.Close()
	<-updatesDone

	transcriptMu.Lock()
	captions.ClearPreview()
	transcriptMu.Unlock()
	tuiSend(PreviewMsg{})
	tuiSend(RecordingStopMsg{Completed: recErr == nil})

	log.StreamMetrics(log.StreamMetricsData{
		Codec:         stats.Codec,
		ConnectMs:     stats.ConnectMs,
		TotalMs:       stats.TotalMs,
		AudioS:        stats.AudioS,
		SentChunks:    stats.SentChunks,
		SentKB:        stats.SentKB,
		DroppedChunks: stats.DroppedChunks,
		RecvMessages:  stats.RecvMessages,
		RecvFinal:     stats.RecvFinal,
		RecvInterim:   stats.RecvInterim,
	})

	if recErr != nil {
		return recErr
	}
	return closeErr
}

func record(capture audio.CaptureDevice, stop <-chan struct{}, sess transcriber.Session) error {
	tracker := &levelTracker{}
	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() { closeOnce.Do(func() { close(done) }) }

	capture.SetCallback(func(data []byte, _ uint32) {
		if len(data) == 0 {
			return
		}
		pcm := make([]byte, len(data))
		copy(pcm, data)
		sess.Feed(pcm)

		if len(data) > 1 {
			var sumSquares float64
			for i := 0; i+1 < len(data); i += 2 {
				sample := int16(binary.LittleEndian.Uint16(data[i:]))
				normalized := float64(sample) / 32768.0
				sumSquares += normalized * normalized
			}
			rms := math.Sqrt(sumSquares / float64(len(data)/2))
			tuiSend(AudioLevelMsg{Level: rms})
			tracker.Observe(rms)
		}
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		return err
	}

	mon := newSilenceMonitor()
	recordStart := time.Now()
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				tuiSend(RecordingTickMsg{Duration: time.Since(recordStart).Seconds()})
				switch mon.Tick(tracker.TickHadSpeech()) {
				case SilenceWarn:
					log.Info("no_voice_warning")
					tuiSend(NoVoiceWarningMsg{})
				case SilenceWarnClear:
					tuiSend(VoiceClearedMsg{})
				case SilenceRepeat:
					log.Info("silence_during_warning")
					tuiSend(NoVoiceWarningMsg{})
				}
			}
		}
	}()

	go func() {
		select {
		case <-stop:
		case <-done:
			return
		}
		log.Info("recording_stop")
		// Capture a short tail so trailing words are not cut off.
		time.Sleep(recordTail)
		closeDone()
	}()
	<-done

	capture.Stop()
	capture.ClearCallback()

	return nil
}

// handleDownload fetches the backend's recorded artifact and saves it in
// the working directory.
func handleDownload(client *transcriber.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := client.DownloadRecording(ctx)
	if err != nil {
		log.Errorf("download error: %v", err)
		tuiSend(ErrorMsg{Text: err.Error()})
		return
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	path, err := transcriber.SaveRecording(wd, data)
	if err != nil {
		log.Errorf("download save error: %v", err)
		tuiSend(ErrorMsg{Text: err.Error()})
		return
	}
	log.Info("recording_saved: " + path)
	tuiSend(NoteMsg{Text: "saved " + path})
}

func handleDeviceSwitch(ctx audio.Context, preferred audio.CaptureConfig, captureDevice *audio.CaptureDevice, selectedDevice **audio.DeviceInfo) {
	if tuiProgram != nil {
		tuiProgram.ReleaseTerminal()
	}
	newDevice, err := audio.SelectDevice(ctx)
	if tuiProgram != nil {
		tuiProgram.RestoreTerminal()
	}

	if err != nil {
		if !errors.Is(err, audio.ErrSelectionCancelled) {
			log.Warnf("device selection failed: %v", err)
		}
		return
	}
	// nil means the system default was chosen.
	applyDeviceSwitch(ctx, preferred, captureDevice, selectedDevice, newDevice)
}

func applyDeviceSwitch(ctx audio.Context, preferred audio.CaptureConfig, captureDevice *audio.CaptureDevice, selectedDevice **audio.DeviceInfo, newDevice *audio.DeviceInfo) {
	name := "system default"
	if newDevice != nil {
		name = newDevice.Name
	}
	log.Info("device_switch: " + name)
	(*captureDevice).Close()
	newCapture, err := audio.OpenCapture(ctx, newDevice, preferred)
	if err != nil {
		log.Errorf("capture device reinit error: %v", err)
		return
	}
	*captureDevice = newCapture
	*selectedDevice = newDevice
	tuiSend(DeviceLineMsg{Text: deviceLineText(newDevice)})
}
