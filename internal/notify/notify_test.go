package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMulti_FansOut(t *testing.T) {
	var a, b Recorder
	var buf bytes.Buffer
	m := Multi{&a, &b, NewWriterSink(&buf), nil}

	m.Notify(context.Background(), Info("Gist created %s", "https://gist.example/x"))

	if len(a.Notices()) != 1 || len(b.Notices()) != 1 {
		t.Fatalf("recorders got %d and %d notices", len(a.Notices()), len(b.Notices()))
	}
	if got := buf.String(); got != "Gist created https://gist.example/x\n" {
		t.Errorf("writer output = %q", got)
	}
}

func TestNotice_Fields(t *testing.T) {
	n := Error("boom")
	if n.Level != LevelError || n.Message != "boom" {
		t.Errorf("notice = %+v", n)
	}
	if n.ID == "" || n.Time.IsZero() {
		t.Error("notice should carry an id and timestamp")
	}
	if Info("a").ID == Info("a").ID {
		t.Error("notice ids should be unique")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	LogSink{Logger: logger}.Notify(context.Background(), Error("check your token"))

	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, "check your token") {
		t.Errorf("log output = %q", out)
	}
}

func TestRecorder_Last(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Error("empty recorder should have no last notice")
	}
	r.Notify(context.Background(), Info("one"))
	r.Notify(context.Background(), Info("two"))
	if n, _ := r.Last(); n.Message != "two" {
		t.Errorf("last = %q", n.Message)
	}
}
