package customtag

import (
	"fmt"
	"strings"
)

// optionRule checks one aspect of defaulted Options and returns the problems
// it found.
type optionRule func(o *Options) []Problem

// optionRules run in order; every problem is reported, not just the first.
var optionRules = []optionRule{
	checkTokens,
	checkNames,
	checkNamespaces,
}

func validate(o *Options) []Problem {
	var problems []Problem
	for _, rule := range optionRules {
		problems = append(problems, rule(o)...)
	}
	return problems
}

func checkTokens(o *Options) []Problem {
	var problems []Problem
	if strings.Contains(o.NamespaceSeparator, folderSeparator) {
		problems = append(problems, Problem{
			Field:   "namespaceSeparator",
			Message: fmt.Sprintf("must not contain the folder separator %q", folderSeparator),
		})
	}
	if strings.Contains(o.TagPrefix, o.NamespaceSeparator) {
		problems = append(problems, Problem{
			Field:   "tagPrefix",
			Message: fmt.Sprintf("must not contain the namespace separator %q", o.NamespaceSeparator),
		})
	}
	if strings.HasPrefix(o.FileExtension, folderSeparator) {
		problems = append(problems, Problem{
			Field:   "fileExtension",
			Message: "must be given without the leading dot",
		})
	}
	for i, r := range o.Roots {
		if strings.TrimSpace(r) == "" {
			problems = append(problems, Problem{
				Field:   fmt.Sprintf("roots[%d]", i),
				Message: "must not be blank",
			})
		}
	}
	return problems
}

// checkNames rejects tag and attribute names the HTML tokenizer would split.
func checkNames(o *Options) []Problem {
	var problems []Problem
	if !validName(o.ReplaceTagNameWith) {
		problems = append(problems, Problem{
			Field:   "replaceTagNameWith",
			Message: fmt.Sprintf("%q is not a valid tag name", o.ReplaceTagNameWith),
		})
	}
	if !validName(o.Attribute) || strings.Contains(o.Attribute, "=") {
		problems = append(problems, Problem{
			Field:   "attribute",
			Message: fmt.Sprintf("%q is not a valid attribute name", o.Attribute),
		})
	}
	return problems
}

func checkNamespaces(o *Options) []Problem {
	var problems []Problem
	seen := make(map[string]int, len(o.Namespaces))
	for i, ns := range o.Namespaces {
		field := fmt.Sprintf("namespaces[%d]", i)
		if ns.Name == "" {
			problems = append(problems, Problem{Field: field + ".name", Message: "is required"})
		} else if first, dup := seen[ns.Name]; dup {
			problems = append(problems, Problem{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicates namespaces[%d]", first),
			})
		} else {
			seen[ns.Name] = i
		}
		if strings.Contains(ns.Name, o.NamespaceSeparator) {
			problems = append(problems, Problem{
				Field:   field + ".name",
				Message: fmt.Sprintf("must not contain the namespace separator %q", o.NamespaceSeparator),
			})
		}
		// Dots in a tag become folders before the namespace is looked up.
		if strings.Contains(ns.Name, folderSeparator) {
			problems = append(problems, Problem{
				Field:   field + ".name",
				Message: fmt.Sprintf("must not contain the folder separator %q", folderSeparator),
			})
		}
		if ns.Name != "" && !validName(ns.Name) {
			problems = append(problems, Problem{Field: field + ".name", Message: "is not a valid tag name part"})
		}
		if ns.Root == "" {
			problems = append(problems, Problem{Field: field + ".root", Message: "is required"})
		}
	}
	return problems
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t\r\n\f/<>\"'")
}
