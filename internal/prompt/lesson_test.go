package prompt

import (
	"strings"
	"testing"
)

func TestLessonSinglePeriodHasNoFraming(t *testing.T) {
	system, user := Lesson(DefaultOptions(), "Redox reactions", 1, 1)

	if !strings.Contains(system, "high school chemistry") {
		t.Errorf("system prompt missing subject: %q", system)
	}
	if !strings.Contains(user, `"Redox reactions"`) {
		t.Errorf("user prompt missing topic: %q", user)
	}
	if strings.Contains(user, "period 1 of") {
		t.Errorf("single-period prompt must not be scoped to a period: %q", user)
	}
	for _, s := range sections {
		if !strings.Contains(user, s) {
			t.Errorf("user prompt missing section %q", s)
		}
	}
}

func TestLessonMultiPeriodFraming(t *testing.T) {
	tests := []struct {
		segment int
		want    []string
		notWant []string
	}{
		{1, []string{"period 1 of 3", "Leave room"}, []string{"already been taught", "final period"}},
		{2, []string{"period 2 of 3", "periods 1 to 1", "Leave room"}, []string{"final period"}},
		{3, []string{"period 3 of 3", "periods 1 to 2", "final period"}, []string{"Leave room"}},
	}

	for _, tt := range tests {
		_, user := Lesson(DefaultOptions(), "Ionic bonds", tt.segment, 3)
		for _, w := range tt.want {
			if !strings.Contains(user, w) {
				t.Errorf("segment %d: missing %q in %q", tt.segment, w, user)
			}
		}
		for _, nw := range tt.notWant {
			if strings.Contains(user, nw) {
				t.Errorf("segment %d: unexpected %q in %q", tt.segment, nw, user)
			}
		}
	}
}

func TestLessonOptionsDefaults(t *testing.T) {
	system, user := Lesson(Options{Subject: "biology", Language: "English"}, "Cells", 1, 1)
	if !strings.Contains(system, "biology") || !strings.Contains(system, "English") {
		t.Errorf("system prompt ignores options: %q", system)
	}
	if !strings.Contains(user, "45-minute") {
		t.Errorf("expected default period length in %q", user)
	}
}
