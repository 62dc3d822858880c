package application

import (
	"fmt"
	"regexp"
	"strings"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[0-9]+$`)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "rootKey" -> "root key")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"rootKey":   "root key",
		"planFile":  "plan file",
		"reportDir": "report directory",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateIssueKey checks that key looks like "PROJ-123" once normalized.
// When project is non-empty the key must belong to it.
func ValidateIssueKey(key, project string) error {
	if err := ValidateRequired("rootKey", key); err != nil {
		return err
	}

	norm := strings.ToUpper(strings.TrimSpace(key))
	if !issueKeyPattern.MatchString(norm) {
		return &KeyError{Key: key, Reason: "expected PROJECT-NUMBER"}
	}

	if project != "" && ProjectOf(norm) != strings.ToUpper(project) {
		return &KeyError{Key: key, Reason: fmt.Sprintf("only project %s is allowed", strings.ToUpper(project))}
	}
	return nil
}

// ProjectOf returns the project prefix of an issue key ("MUP-12" -> "MUP")
func ProjectOf(key string) string {
	i := strings.LastIndex(key, "-")
	if i <= 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(key[:i]))
}
