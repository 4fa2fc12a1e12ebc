package bot

import (
	"fmt"
	"strings"
)

// thinking accumulates the reasoning behind a decision
type thinking struct {
	thoughts []string
}

func (t *thinking) add(format string, args ...any) {
	t.thoughts = append(t.thoughts, fmt.Sprintf(format, args...))
}

// String joins the thoughts into one line of reasoning
func (t *thinking) String() string {
	if len(t.thoughts) == 0 {
		return "No clear reasoning available"
	}
	return strings.Join(t.thoughts, ". ")
}
