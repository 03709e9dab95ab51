package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "seclab/") {
		t.Errorf("UserAgent() = %q, want seclab/ prefix", ua)
	}
	if !strings.Contains(ua, Version) {
		t.Errorf("UserAgent() = %q, want version %q embedded", ua, Version)
	}
}

func TestSilentMode(t *testing.T) {
	defer SetSilent(false)
	if IsSilent() {
		t.Fatal("silent must default to off")
	}
	SetSilent(true)
	if !IsSilent() {
		t.Error("SetSilent(true) not observed")
	}
	SetSilent(false)
	if IsSilent() {
		t.Error("SetSilent(false) not observed")
	}
}

func TestSeverityStyle_UnknownFallsBackToInfo(t *testing.T) {
	known := SeverityStyle("critical")
	info := SeverityStyle("info")
	unknown := SeverityStyle("mystery")
	if unknown.GetForeground() != info.GetForeground() {
		t.Error("unknown severity must render like info")
	}
	if known.GetForeground() == info.GetForeground() {
		t.Error("critical and info must render differently")
	}
}

func TestTable_RendersHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, []string{"Header", "Verdict"}, [][]string{
		{"Content-Security-Policy", "missing"},
		{"X-Frame-Options", "ok"},
	})
	if err != nil {
		t.Fatalf("Table() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"HEADER", "Content-Security-Policy", "X-Frame-Options", "ok"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}
