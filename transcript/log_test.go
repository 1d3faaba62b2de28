package transcript

import "testing"

func mustParse(t *testing.T, raw string) Message {
	t.Helper()
	m, ok := Parse(raw)
	if !ok {
		t.Fatalf("Parse(%q) dropped", raw)
	}
	return m
}

func TestLogInterimThenFinal(t *testing.T) {
	var l Log

	if _, added := l.Apply(mustParse(t, "Transcribing|00:01|Hello wor|Alice")); added {
		t.Error("interim message must not append an entry")
	}
	if l.Preview() != "Hello wor" {
		t.Errorf("preview = %q, want 'Hello wor'", l.Preview())
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}

	e, added := l.Apply(mustParse(t, "Done|00:01|Hello world|Alice"))
	if !added {
		t.Fatal("final message must append an entry")
	}
	want := Entry{Time: "00:01", Text: "Hello world", Speaker: "Alice"}
	if e != want {
		t.Errorf("entry = %+v, want %+v", e, want)
	}
	if l.Preview() != "Hello world" {
		t.Errorf("preview = %q, want 'Hello world'", l.Preview())
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestLogOrderPreserved(t *testing.T) {
	var l Log
	l.Apply(Message{Status: StatusFinal, Time: "00:01", Text: "one", Speaker: "A"})
	l.Apply(Message{Status: StatusInterim, Time: "00:02", Text: "tw", Speaker: "B"})
	l.Apply(Message{Status: StatusFinal, Time: "00:02", Text: "two", Speaker: "B"})

	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Text != "one" || entries[1].Text != "two" {
		t.Errorf("order wrong: %+v", entries)
	}

	last, ok := l.Last()
	if !ok || last.Text != "two" {
		t.Errorf("Last = %+v, %v", last, ok)
	}
}

func TestLogClearPreview(t *testing.T) {
	var l Log
	l.Apply(Message{Status: StatusInterim, Text: "typing"})
	l.ClearPreview()
	if l.Preview() != "" {
		t.Errorf("preview = %q after clear", l.Preview())
	}
	if _, ok := l.Last(); ok {
		t.Error("Last should report nothing on an empty log")
	}
}
