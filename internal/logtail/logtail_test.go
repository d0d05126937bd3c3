package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParseAndFormat(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	line := fmt.Sprintf(`{"level":"warn","collection":"patients","op":"delete","seq":3,"time":%q,"message":"request failed"}`, ts.Format(time.RFC3339))

	e := Parse(line)
	if e.Level != zerolog.WarnLevel || e.Message != "request failed" {
		t.Fatalf("Parse() = %+v", e)
	}
	if !e.Time.Equal(ts) {
		t.Fatalf("Time = %v, want %v", e.Time, ts)
	}
	want := "09:30:00 WRN request failed collection=patients op=delete seq=3"
	if got := e.Format(); got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("panic: something broke")
	if e.Level != zerolog.NoLevel || e.Message != "panic: something broke" {
		t.Fatalf("Parse() = %+v", e)
	}
	if got := e.Format(); got != "panic: something broke" {
		t.Fatalf("Format() = %q", got)
	}
}

func TestTail_FiltersByLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "prms.log")
	body := strings.Join([]string{
		`{"level":"debug","message":"request pending"}`,
		`{"level":"info","message":"signed in"}`,
		``,
		`not json`,
		`{"level":"error","message":"refresh failed"}`,
	}, "\n")
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Tail(logPath, 0, zerolog.InfoLevel)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	var msgs []string
	for _, e := range got {
		msgs = append(msgs, e.Message)
	}
	want := []string{"signed in", "not json", "refresh failed"}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("Tail() messages = %v, want %v", msgs, want)
	}
}
