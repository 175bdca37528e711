package lifecycle

import (
	"fmt"
	"strings"

	"github.com/AnikaLegal/caseflow/internal/domain"
)

// Every mutating lifecycle action appends a short deterministic note to the
// task explaining why it happened. One fixed template per action.

func suspendNote(user string) string {
	return fmt.Sprintf("This task was suspended because %s was removed from the case.", user)
}

func revertNote(user string) string {
	return fmt.Sprintf("This task was returned to its owner because %s was removed from the case.", user)
}

func resumeNote(user string, role domain.CaseRole) string {
	return fmt.Sprintf("This task was resumed because %s was assigned to the case as its %s.", user, roleLabel(role))
}

func reassignNote(from, to string) string {
	return fmt.Sprintf("This task was reassigned from %s to %s.", from, to)
}

func closureNote() string {
	return "This task was closed because the case was closed."
}

func roleLabel(role domain.CaseRole) string {
	return strings.ToLower(string(role))
}
