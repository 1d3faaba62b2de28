package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"livecap/audio"
	"livecap/log"
	"livecap/transcriber"
)

// runTestMode drives a full session headlessly: audio comes from a WAV
// file replayed in real time, commands come from stdin.
func runTestMode(client *transcriber.Client, wavPath string) {
	fakeCtx, err := audio.NewFakeContext(wavPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	fakeCapture := capture.(*audio.FakeCapture)
	recordingDone := make(chan struct{}, 1)

	// Stdin driver in background -- requests recordings, handles WAIT/SLEEP/QUIT
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			cmd := strings.TrimSpace(scanner.Text())
			switch cmd {
			case "START":
				select {
				case startRequestChan <- struct{}{}:
				default:
				}
			case "STOP":
				fireStop()
			case "WAIT":
				<-recordingDone
			case "WAIT_AUDIO_DONE":
				<-fakeCapture.AudioDone()
			case "DOWNLOAD":
				handleDownload(client)
			case "QUIT":
				log.SessionEnd(entryCount())
				os.Exit(0)
			default:
				if strings.HasPrefix(cmd, "SLEEP ") {
					if ms, err := strconv.Atoi(cmd[6:]); err == nil {
						time.Sleep(time.Duration(ms) * time.Millisecond)
					}
				}
			}
		}
		os.Exit(0)
	}()

	// Event loop -- same pattern as run()
	for {
		<-startRequestChan
		stop := newStop()
		if err := handleRecording(capture, stop); err != nil {
			log.Errorf("recording error: %v", err)
		}
		select {
		case recordingDone <- struct{}{}:
		default:
		}
	}
}
