// Package envvar expands ${VAR} and ${VAR:-default} placeholders in
// configuration values.
package envvar

import (
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// pattern captures the variable name and the optional default after ":-".
var pattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::-([^}]*))?\}`)

const defaultSyntaxMarker = ":-"

// Expand replaces placeholders with environment values. An unset variable
// takes its default when one is given; otherwise it expands to "" and a
// warning is logged.
func Expand(value string) string {
	if value == "" {
		return value
	}

	return pattern.ReplaceAllStringFunc(value, expandMatch)
}

func expandMatch(match string) string {
	groups := pattern.FindStringSubmatch(match)
	name := groups[1]

	if value, ok := os.LookupEnv(name); ok {
		return value
	}

	if groups[2] != "" || strings.Contains(match, defaultSyntaxMarker) {
		return groups[2]
	}

	logrus.WithField("variable", name).Warn("environment variable not set")

	return ""
}

// ExpandAll expands every pointed-to string in place.
func ExpandAll(values ...*string) {
	for _, value := range values {
		if value != nil {
			*value = Expand(*value)
		}
	}
}
