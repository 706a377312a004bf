package models

import (
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Redox", "Redox"},
		{"spaces", "Acid Base Titration", "Acid_Base_Titration"},
		{"path separators", "ions/salts\\bases", "ions-salts-bases"},
		{"reserved chars", `what? "why"`, `what-_-why`},
		{"cjk kept", "氧化还原反应", "氧化还原反应"},
		{"trimmed", "  ../etc  ", "etc"},
		{"control chars dropped", "a\tb\x00c", "abc"},
		{"empty", "", "untitled"},
		{"only separators", "///", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	got := Filename(date, "化学平衡")
	if got != "20260309_化学平衡.md" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestJobResultHelpers(t *testing.T) {
	r := JobResult{
		Segments: []SegmentResult{
			{Index: 1, Total: 3, Content: "part one\n", Backend: "m1"},
			{Index: 2, Total: 3, Content: "part two", Backend: "m2"},
			{Index: 3, Total: 3, Failed: true},
		},
	}

	if got := r.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	backends := r.Backends()
	if len(backends) != 2 || backends[0] != "m1" || backends[1] != "m2" {
		t.Errorf("Backends() = %v", backends)
	}
	if got := r.Content(); got != "part one\n\npart two" {
		t.Errorf("Content() = %q", got)
	}
	failed, ok := r.Failure()
	if !ok || failed.Index != 3 {
		t.Errorf("Failure() = %+v, %v", failed, ok)
	}
}

func TestTopicPersisted(t *testing.T) {
	if (Topic{Text: "a", Source: SourceManual}).Persisted() {
		t.Error("manual topic should not be persisted")
	}
	if !(Topic{Text: "a", Source: SourceQueued}).Persisted() {
		t.Error("queued topic should be persisted")
	}
}
