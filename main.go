package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"livecap/audio"
	"livecap/config"
	"livecap/encoder"
	"livecap/log"
	"livecap/shutdown"
	"livecap/transcriber"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if n := entryCount(); n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func main() {
	run()
}

func run() {
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("livecap %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		probe := encoder.New()
		log.SessionStart(cfg.WSURL, probe.Format())
		probe.Close()
	}

	client := transcriber.NewClient(cfg.WSURL, cfg.DownloadURL())
	activeDialer = client

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: livecap -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(client, args[0])
		return
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			if !errors.Is(err, audio.ErrSelectionCancelled) {
				log.Warnf("device selection failed: %v", err)
				fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
				fmt.Fprintln(os.Stderr, "Falling back to default device")
			}
			selectedDevice = nil
		}
	}

	preferred := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
		Processing: true,
	}
	captureDevice, err := audio.OpenCapture(ctx, selectedDevice, preferred)
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	tuiMu.Lock()
	tuiProgram = NewTUIProgram()
	tuiMu.Unlock()

	go func() {
		if _, err := tuiProgram.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
			os.Exit(1)
		}
		gracefulShutdown()
	}()

	<-tuiReady

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown()
	}()

	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})

	for {
		select {
		case <-startRequestChan:
			log.Info("recording_device: " + captureDevice.DeviceName())
			// Arm the stop channel before the TUI can show the stop control.
			stop := newStop()
			tuiSend(RecordingStartMsg{})
			err := handleRecording(captureDevice, stop)
			reportRecordingError(err)

		case <-downloadRequestChan:
			go handleDownload(client)

		case <-deviceSelectChan:
			handleDeviceSwitch(ctx, preferred, &captureDevice, &selectedDevice)
		}
	}
}
