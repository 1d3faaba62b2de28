package main

import "time"

const (
	tickInterval     = 100 * time.Millisecond
	silenceWarnEvery = 8 * time.Second
	speechMinRatio   = 0.10
	speechClearRatio = 0.25 // higher threshold to clear warning (hysteresis)

	// RMS level above which a tick counts as speech.
	speechRMS = 0.015
)

type SilenceEvent int

const (
	SilenceNone      SilenceEvent = iota
	SilenceWarn                   // no voice detected
	SilenceWarnClear              // speech resumed after warning
	SilenceRepeat                 // repeat warning (every 8s)
)

type silenceMonitor struct {
	warnAt int

	ticks    int
	window   []bool
	warned   bool
	lastWarn int
}

func newSilenceMonitor() *silenceMonitor {
	warnAt := int(silenceWarnEvery / tickInterval)
	return &silenceMonitor{
		warnAt: warnAt,
		window: make([]bool, warnAt),
	}
}

func (m *silenceMonitor) ratio() float64 {
	n := m.warnAt
	if m.ticks < n {
		n = m.ticks
	}
	if n == 0 {
		return 1.0
	}
	count := 0
	for i := 0; i < n; i++ {
		if m.window[(m.ticks-1-i+m.warnAt)%m.warnAt] {
			count++
		}
	}
	return float64(count) / float64(n)
}

func (m *silenceMonitor) Tick(hasSpeech bool) SilenceEvent {
	m.window[m.ticks%m.warnAt] = hasSpeech
	m.ticks++

	r := m.ratio()

	// Warn: 8s window below threshold
	if m.ticks >= m.warnAt && r < speechMinRatio && !m.warned {
		m.warned = true
		m.lastWarn = m.ticks
		return SilenceWarn
	}
	// Clear: speech ratio above clear threshold
	if m.warned && r >= speechClearRatio {
		m.warned = false
		return SilenceWarnClear
	}

	// Repeat warning every 8s
	if m.warned && m.ticks-m.lastWarn >= m.warnAt {
		m.lastWarn = m.ticks
		return SilenceRepeat
	}

	return SilenceNone
}
