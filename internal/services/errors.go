package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the outcomes the HTTP layer has to tell apart. They
// are matched with errors.Is at the handler boundary; repositories.ErrNotFound
// covers the missing-resource case.
var (
	// ErrDuplicateIdentity means the username or email is already registered.
	ErrDuplicateIdentity = errors.New("username or email already registered")

	// ErrInvalidCredentials is the single login failure. Unknown email and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden means the caller is authenticated but is not the author
	// of the targeted post.
	ErrForbidden = errors.New("only the author may modify this post")
)

// ValidationError reports which input fields violated their constraints.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed on: %s", strings.Join(names, ", "))
}
