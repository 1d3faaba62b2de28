package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"livecap/transcript"
)

// TUI message types
type RecordingStartMsg struct{}
type RecordingStopMsg struct {
	Completed bool // false when the recording failed before audio flowed
}
type RecordingTickMsg struct{ Duration float64 }
type AudioLevelMsg struct{ Level float64 }
type PreviewMsg struct {
	Text    string
	Speaker string
}
type EntryMsg struct{ Entry transcript.Entry }
type NoVoiceWarningMsg struct{}
type VoiceClearedMsg struct{}
type ErrorMsg struct{ Text string }
type NoteMsg struct{ Text string }       // transient status line ("saved ...", "copied")
type DeviceLineMsg struct{ Text string } // microphone device name
type tickMsg time.Time

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateRecording
)

// Requests from TUI key handlers to the main event loop.
var (
	startRequestChan    = make(chan struct{}, 1)
	downloadRequestChan = make(chan struct{}, 1)
	deviceSelectChan    = make(chan struct{}, 1)
)

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

type tuiModel struct {
	state             tuiState
	busy              bool // a start/stop request is in flight
	everStarted       bool
	frame             int
	recordingDuration float64
	audioLevel        float64
	peakLevel         float64
	width, height     int

	entries        []transcript.Entry
	preview        string
	previewSpeaker string
	deviceLine     string
	noVoice        bool
	errLine        string
	note           string
}

var (
	styleRec      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	styleNote     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleTime     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	stylePreview  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHelpBold = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	styleLevel    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

// Speaker label colors cycle through a fixed palette, assigned by first
// appearance so a speaker keeps its color for the whole session.
var speakerPalette = []string{"4", "5", "6", "2", "3", "13"}

func NewTUIProgram() *tea.Program {
	m := tuiModel{}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case RecordingStartMsg:
		m.state = tuiStateRecording
		m.busy = false
		m.recordingDuration = 0
		m.audioLevel = 0
		m.peakLevel = 0
		m.noVoice = false
		m.errLine = ""
		m.note = ""

	case RecordingStopMsg:
		m.state = tuiStateIdle
		m.busy = false
		m.everStarted = m.everStarted || msg.Completed
		m.audioLevel = 0
		m.noVoice = false
		m.preview = ""
		m.previewSpeaker = ""

	case RecordingTickMsg:
		m.recordingDuration = msg.Duration

	case AudioLevelMsg:
		if m.state == tuiStateRecording {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
			if msg.Level > m.peakLevel {
				m.peakLevel = msg.Level
			}
		}

	case PreviewMsg:
		m.preview = msg.Text
		m.previewSpeaker = msg.Speaker

	case EntryMsg:
		m.entries = append(m.entries, msg.Entry)

	case NoVoiceWarningMsg:
		m.noVoice = true

	case VoiceClearedMsg:
		m.noVoice = false

	case ErrorMsg:
		m.errLine = msg.Text

	case NoteMsg:
		m.note = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "r":
		if m.state == tuiStateIdle && !m.busy {
			m.busy = true
			select {
			case startRequestChan <- struct{}{}:
			default:
			}
		}

	case "s":
		if m.state == tuiStateRecording && !m.busy {
			m.busy = true
			fireStop()
		}

	case "d":
		// Download is unavailable while a recording is in flight.
		if m.state == tuiStateIdle && m.everStarted && !m.busy {
			select {
			case downloadRequestChan <- struct{}{}:
			default:
			}
		}

	case "c":
		if last, ok := lastEntry(m.entries); ok {
			if err := clipboard.WriteAll(last.Text); err != nil {
				m.errLine = fmt.Sprintf("clipboard: %v", err)
			} else {
				m.note = "copied last entry"
			}
		}

	case "ctrl+g":
		if m.state == tuiStateIdle && !m.busy {
			select {
			case deviceSelectChan <- struct{}{}:
			default:
			}
		}
	}
	return m, nil
}

func lastEntry(entries []transcript.Entry) (transcript.Entry, bool) {
	if len(entries) == 0 {
		return transcript.Entry{}, false
	}
	return entries[len(entries)-1], true
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Status line
	if m.state == tuiStateRecording {
		dot := "●"
		if m.frame%2 == 1 {
			dot = " "
		}
		b.WriteString(styleRec.Render(fmt.Sprintf("%s REC %.1fs", dot, m.recordingDuration)))
		b.WriteString("  " + styleLevel.Render(levelBar(m.audioLevel, 20)))
		b.WriteString("\n")
		if m.noVoice {
			b.WriteString(styleWarn.Render("  ⚠ no voice detected") + "\n")
		}
	} else {
		b.WriteString(styleIdle.Render("○ IDLE") + "\n")
	}

	if m.deviceLine != "" {
		b.WriteString(styleIdle.Render(m.deviceLine) + "\n")
	}
	b.WriteString("\n")

	// Transcript panel: finalized entries, newest last, then the preview.
	wrapWidth := m.width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	speakerColors := map[string]lipgloss.Style{}
	for _, e := range visibleEntries(m.entries, m.height) {
		st, ok := speakerColors[e.Speaker]
		if !ok {
			c := speakerPalette[len(speakerColors)%len(speakerPalette)]
			st = lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
			speakerColors[e.Speaker] = st
		}
		prefix := styleTime.Render(e.Time) + " " + st.Render(e.Speaker+":") + " "
		for i, line := range wrapText(e.Text, wrapWidth) {
			if i == 0 {
				b.WriteString(prefix + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}
	if m.preview != "" {
		label := ""
		if m.previewSpeaker != "" {
			label = m.previewSpeaker + ": "
		}
		for _, line := range wrapText(label+m.preview, wrapWidth) {
			b.WriteString(stylePreview.Render(line) + "\n")
		}
	}
	if len(m.entries) == 0 && m.preview == "" {
		b.WriteString(styleIdle.Render("No captions yet") + "\n")
	}
	b.WriteString("\n")

	if m.errLine != "" {
		b.WriteString(styleErr.Render("Error: "+m.errLine) + "\n")
	}
	if m.note != "" {
		b.WriteString(styleNote.Render(m.note) + "\n")
	}

	// Help line
	help := styleHelpBold.Render("r") + styleHelp.Render(" record  ") +
		styleHelpBold.Render("s") + styleHelp.Render(" stop  ")
	if m.everStarted && m.state == tuiStateIdle {
		help += styleHelpBold.Render("d") + styleHelp.Render(" download  ")
	}
	help += styleHelpBold.Render("c") + styleHelp.Render(" copy last  ") +
		styleHelpBold.Render("ctrl+g") + styleHelp.Render(" mic  ") +
		styleHelpBold.Render("ctrl+c") + styleHelp.Render(" quit")
	b.WriteString(help + "\n")
	b.WriteString(styleHelp.Render("livecap " + version))

	return b.String()
}

// visibleEntries trims the list to what fits the terminal, keeping the tail.
func visibleEntries(entries []transcript.Entry, height int) []transcript.Entry {
	max := height - 8
	if max < 3 {
		max = 3
	}
	if len(entries) > max {
		return entries[len(entries)-max:]
	}
	return entries
}

func levelBar(level float64, width int) string {
	filled := int(level * 3 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("▮", filled) + strings.Repeat("▯", width-filled)
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
