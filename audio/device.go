package audio

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrSelectionCancelled is returned when the user backs out of the picker.
var ErrSelectionCancelled = errors.New("device selection cancelled")

// SelectDevice prompts for a capture input on the terminal. The first option
// is the system default, returned as nil; cancelling (q or Ctrl+C) returns
// ErrSelectionCancelled so the caller keeps the current device.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		// Nothing to choose between; capture uses the system default.
		return nil, nil
	}

	labels := make([]string, 0, len(devices)+1)
	labels = append(labels, "system default")
	for _, d := range devices {
		labels = append(labels, deviceLabel(d))
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	render := func() {
		fmt.Print("\r\x1b[J")
		fmt.Printf("Capture input (%d found) — ↑/↓ move, Enter select, q cancel:\r\n\r\n", len(devices))
		for i, label := range labels {
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", label)
			} else {
				fmt.Printf("    %s\r\n", label)
			}
		}
	}
	render()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		move := 0
		switch {
		case n == 1 && buf[0] == 13: // Enter
			fmt.Print("\r\n")
			if cursor == 0 {
				return nil, nil
			}
			return &devices[cursor-1], nil
		case n == 1 && (buf[0] == 'q' || buf[0] == 3): // q / Ctrl+C
			fmt.Print("\r\n")
			return nil, ErrSelectionCancelled
		case n == 1 && buf[0] == 'j':
			move = 1
		case n == 1 && buf[0] == 'k':
			move = -1
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A': // Up arrow
			move = -1
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B': // Down arrow
			move = 1
		}
		if c := cursor + move; c >= 0 && c < len(labels) {
			cursor = c
		}

		fmt.Printf("\x1b[%dA", len(labels)+2)
		render()
	}
}

func deviceLabel(d DeviceInfo) string {
	if IsBluetooth(d.Name) {
		return d.Name + " \x1b[33m[⚠ bluetooth: lower quality]\x1b[0m"
	}
	return d.Name
}
