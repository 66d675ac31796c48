package k8s

import (
	"k8s.io/apimachinery/pkg/labels"
)

// SelectorFromMap joins a selector map into a "key=value,..." label selector.
// Keys are sorted, so the same map always yields the same selector string.
func SelectorFromMap(selector map[string]string) (string, error) {
	if len(selector) == 0 {
		return "", ErrSelectorEmpty
	}

	return labels.SelectorFromSet(labels.Set(selector)).String(), nil
}
