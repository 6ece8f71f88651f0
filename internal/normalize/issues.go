package normalize

import "fmt"

// Issue is one non-fatal problem found while repairing a raw record.
// Issues are advisory: the repaired record is always returned and the
// caller decides whether any issue is worth rejecting over.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// issueList accumulates issues during a normalization pass
type issueList struct {
	issues []Issue
}

func (l *issueList) add(field, format string, args ...any) {
	l.issues = append(l.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}
