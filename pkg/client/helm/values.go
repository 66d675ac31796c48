package helm

import (
	"fmt"
	"os"

	"github.com/Juniper/eda-apstra-project/pkg/fsutil"
	helmv4strvals "helm.sh/helm/v4/pkg/strvals"
	"sigs.k8s.io/yaml"
)

// MergeValues layers the spec's value files and then its --set style values,
// in the order given, so a later entry wins on overlapping keys. Relative
// value file paths that do not exist in the working directory resolve
// against the chart directory.
func MergeValues(spec *ChartSpec) (map[string]any, error) {
	base := map[string]any{}

	for _, file := range spec.ValueFiles {
		data, err := os.ReadFile(fsutil.ResolveAgainst(spec.ChartPath, file)) //nolint:gosec // operator supplied path
		if err != nil {
			return nil, fmt.Errorf("failed to read values file %s: %w", file, err)
		}

		err = mergeYAML(data, base)
		if err != nil {
			return nil, fmt.Errorf("failed to parse values file %s: %w", file, err)
		}
	}

	for _, assignment := range spec.SetValues {
		err := helmv4strvals.ParseInto(assignment, base)
		if err != nil {
			return nil, fmt.Errorf("failed to parse set value %s: %w", assignment, err)
		}
	}

	return base, nil
}

func mergeYAML(data []byte, base map[string]any) error {
	var parsed map[string]any

	err := yaml.Unmarshal(data, &parsed)
	if err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}

	mergeMapsInto(base, parsed)

	return nil
}

func mergeMapsInto(dest, src map[string]any) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(map[string]any); ok {
			if destMap, ok := dest[key].(map[string]any); ok {
				mergeMapsInto(destMap, srcMap)

				continue
			}
		}

		dest[key] = srcVal
	}
}
