package transcript

// Entry is a finalized utterance. Immutable once created.
type Entry struct {
	Time    string
	Text    string
	Speaker string
}

// Log accumulates finalized entries plus the single live-preview line.
// Entries are append-only and keep arrival order.
type Log struct {
	entries []Entry
	preview string
}

// Apply folds one accepted message into the log. Every message overwrites
// the preview; only final messages append an entry, returned with ok=true.
func (l *Log) Apply(m Message) (Entry, bool) {
	l.preview = m.Text
	if !m.Final() {
		return Entry{}, false
	}
	e := Entry{Time: m.Time, Text: m.Text, Speaker: m.Speaker}
	l.entries = append(l.entries, e)
	return e, true
}

// ClearPreview resets the live preview, called when a session ends.
func (l *Log) ClearPreview() {
	l.preview = ""
}

func (l *Log) Preview() string {
	return l.preview
}

func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns the finalized list in arrival order. The returned slice
// is shared; callers must not mutate it.
func (l *Log) Entries() []Entry {
	return l.entries
}

func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}
