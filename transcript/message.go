// Package transcript models the text protocol spoken by the captioning
// backend: one UTF-8 message per utterance update, four pipe-delimited
// fields `status|time|text|speaker`.
package transcript

import "strings"

// Status tags, compared by exact string match.
const (
	StatusInterim = "Transcribing"
	StatusFinal   = "Done"
)

const fieldCount = 4

// Message is one parsed inbound record. All fields are opaque strings
// except Status, which selects interim vs final handling.
type Message struct {
	Status  string
	Time    string
	Text    string
	Speaker string
}

func (m Message) Final() bool {
	return m.Status == StatusFinal
}

// Parse splits a raw inbound message into its fields. Missing fields come
// back empty; anything past the fourth delimiter stays in the speaker field.
// Messages with an empty text field are dropped (ok=false); nothing else is
// rejected.
func Parse(raw string) (Message, bool) {
	parts := strings.SplitN(raw, "|", fieldCount)
	for len(parts) < fieldCount {
		parts = append(parts, "")
	}
	m := Message{
		Status:  parts[0],
		Time:    parts[1],
		Text:    parts[2],
		Speaker: parts[3],
	}
	if m.Text == "" {
		return Message{}, false
	}
	return m, true
}
