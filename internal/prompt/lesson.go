// Package prompt renders the lesson-plan prompts sent to generation backends.
package prompt

import (
	"fmt"
	"strings"
)

// Options controls the persona and shape of a lesson plan.
type Options struct {
	Subject       string // e.g. "high school chemistry"
	PeriodMinutes int
	Language      string
}

// DefaultOptions returns the defaults used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Subject:       "high school chemistry",
		PeriodMinutes: 45,
		Language:      "Simplified Chinese",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if strings.TrimSpace(o.Subject) == "" {
		o.Subject = d.Subject
	}
	if o.PeriodMinutes <= 0 {
		o.PeriodMinutes = d.PeriodMinutes
	}
	if strings.TrimSpace(o.Language) == "" {
		o.Language = d.Language
	}
	return o
}

// sections are the required Markdown modules of every plan.
var sections = []string{
	"Teaching objectives (by core competency)",
	"Key points and difficulties",
	"Lesson hook (a vivid real-life example or demonstration experiment)",
	"Teaching process (step by step, including teacher-student interaction)",
	"Blackboard design (as a structure diagram)",
	"Homework",
}

// Lesson returns the system and user prompts for one period of topic.
// When total is 1 the request covers the whole lesson with no period framing.
func Lesson(opts Options, topic string, segment, total int) (system, user string) {
	opts = opts.withDefaults()

	system = fmt.Sprintf(`You are a senior %s teacher with 20 years of classroom experience.
You write detailed, practical lesson plans in Markdown.
Write the entire answer in %s.`, opts.Subject, opts.Language)

	b := &strings.Builder{}
	if total <= 1 {
		fmt.Fprintf(b, "Design a detailed lesson plan for the topic %q (one %d-minute period).\n",
			topic, opts.PeriodMinutes)
	} else {
		fmt.Fprintf(b, "The topic %q is taught over %d periods of %d minutes each.\n",
			topic, total, opts.PeriodMinutes)
		fmt.Fprintf(b, "Design the lesson plan for period %d of %d only.\n", segment, total)
		if segment > 1 {
			fmt.Fprintf(b, "Assume periods 1 to %d have already been taught; build on them without repeating their content.\n",
				segment-1)
		}
		if segment < total {
			b.WriteString("Leave room for the remaining periods; do not cover their material.\n")
		} else {
			b.WriteString("This is the final period; close with a review of the whole topic.\n")
		}
		b.WriteString("The plan must be self-contained and readable on its own.\n")
	}

	b.WriteString("\nUse Markdown and include these sections:\n")
	for i, s := range sections {
		fmt.Fprintf(b, "%d. **%s**\n", i+1, s)
	}
	return system, b.String()
}
