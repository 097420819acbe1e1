package repos

import (
	"fmt"
	"strings"

	"github.com/klimeurt/repo-collector/internal/jsonvalue"
)

// FilterOptions selects which kinds of repositories are kept. Each flag,
// when false, excludes repositories having that attribute.
type FilterOptions struct {
	Forks   bool
	Private bool
	// Collaborator keeps repositories where the caller lacks admin
	// permission. It checks permissions.admin only, not general
	// collaborator access.
	Collaborator bool
	Archived     bool
}

// FieldError is returned when a repository record lacks a required field
// or holds it with the wrong type.
type FieldError struct {
	Index int
	Field string
	Want  jsonvalue.Kind
}

func (err *FieldError) Error() string {
	return fmt.Sprintf("repository record %d: field %q missing or not a %s", err.Index, err.Field, err.Want)
}

// Filter maps the full_name of every kept repository to its ssh_url with a
// trailing ".git" removed. When two records share a full_name the later
// one wins.
func Filter(records []jsonvalue.Value, opts FilterOptions) (map[string]string, error) {
	selected := make(map[string]string)
	for i, v := range records {
		r := record{index: i, value: v}

		keep := (opts.Forks || !r.flag("fork")) &&
			(opts.Private || !r.flag("private")) &&
			(opts.Collaborator || r.flag("permissions", "admin")) &&
			(opts.Archived || !r.flag("archived"))
		if r.err != nil {
			return nil, r.err
		}
		if !keep {
			continue
		}

		fullName := r.text("full_name")
		sshURL := r.text("ssh_url")
		if r.err != nil {
			return nil, r.err
		}
		selected[fullName] = StripDotGit(sshURL)
	}
	return selected, nil
}

// StripDotGit removes one trailing ".git" from a clone URL
func StripDotGit(url string) string {
	return strings.TrimSuffix(url, ".git")
}

// record reads fields lazily and keeps the first failure
type record struct {
	index int
	value jsonvalue.Value
	err   error
}

func (r *record) flag(path ...string) bool {
	if r.err != nil {
		return false
	}
	field, _ := r.value.Lookup(path...)
	b, ok := field.AsBool()
	if !ok {
		r.err = &FieldError{Index: r.index, Field: strings.Join(path, "."), Want: jsonvalue.Bool}
	}
	return b
}

func (r *record) text(path ...string) string {
	if r.err != nil {
		return ""
	}
	field, _ := r.value.Lookup(path...)
	s, ok := field.AsString()
	if !ok {
		r.err = &FieldError{Index: r.index, Field: strings.Join(path, "."), Want: jsonvalue.String}
	}
	return s
}
