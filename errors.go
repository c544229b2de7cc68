package customtag

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against resolution failures.
var (
	ErrUnknownNamespace = errors.New("unknown namespace")
	ErrTemplateNotFound = errors.New("template not found")
)

// ResolveError is the base error type for all resolution errors.
type ResolveError struct {
	Tag     string // Tag name as it appeared in the tree
	Message string // Error message
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("custom tag <%s>: %s", e.Tag, e.Message)
}

// UnknownNamespaceError is returned when a tag references a namespace that is
// not configured.
type UnknownNamespaceError struct {
	ResolveError
	Namespace string // Namespace name taken from the tag
}

// Error implements the error interface.
func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("custom tag <%s>: unknown module namespace %q", e.Tag, e.Namespace)
}

// Is reports whether target is ErrUnknownNamespace.
func (e *UnknownNamespaceError) Is(target error) bool {
	return target == ErrUnknownNamespace
}

// TemplateNotFoundError is returned when no candidate file exists after every
// applicable search strategy has been tried.
type TemplateNotFoundError struct {
	ResolveError
	Namespace string   // Namespace name, empty for root-search
	Searched  []string // Directories searched, in order
}

// Error implements the error interface.
func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("custom tag <%s>: %s", e.Tag, e.Message)
}

// Is reports whether target is ErrTemplateNotFound.
func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// NewUnknownNamespaceError creates a new UnknownNamespaceError.
func NewUnknownNamespaceError(tag, namespace string) *UnknownNamespaceError {
	return &UnknownNamespaceError{
		ResolveError: ResolveError{
			Tag:     tag,
			Message: "unknown module namespace " + namespace,
		},
		Namespace: namespace,
	}
}

// NewRootNotFoundError creates a TemplateNotFoundError for a root-search miss.
func NewRootNotFoundError(tag string, roots []string) *TemplateNotFoundError {
	return &TemplateNotFoundError{
		ResolveError: ResolveError{
			Tag:     tag,
			Message: "template not found in any defined root path " + strings.Join(roots, ", "),
		},
		Searched: roots,
	}
}

// NewNamespaceNotFoundError creates a TemplateNotFoundError for a namespace miss.
// withRoots marks a miss that also fell through to the search roots.
func NewNamespaceNotFoundError(tag, namespace, root string, searched []string, withRoots bool) *TemplateNotFoundError {
	msg := fmt.Sprintf("template not found in the namespace's path %s", root)
	if withRoots {
		msg = fmt.Sprintf("template not found in the namespace's root %s nor in any defined root path", root)
	}
	return &TemplateNotFoundError{
		ResolveError: ResolveError{
			Tag:     tag,
			Message: msg,
		},
		Namespace: namespace,
		Searched:  searched,
	}
}

// Problem is a single invalid option found by the validation pass.
type Problem struct {
	Field   string // Option name, e.g. "namespaces[1].root"
	Message string
}

// String returns "field: message".
func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// ConfigError collects every problem found while normalizing Options. It is
// returned before any tree is traversed.
type ConfigError struct {
	Problems []Problem
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid custom tag options: " + strings.Join(parts, "; ")
}

// Has reports whether a problem was recorded for field.
func (e *ConfigError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}
