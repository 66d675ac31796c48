package v1alpha1_test

import (
	"testing"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const valuesDocument = `
global:
  namespace: apstra-rhocp-demo-helm
workloads:
  deployment:
    name: vnet1-deployment
    replicas: 1
  kubevirtvm:
    name: vnet2-vm
    sriovnet:
      rangeStart: 10.1.2.7
      rangeEnd: 10.1.2.50
`

func TestParseValues(t *testing.T) {
	t.Parallel()

	values, err := v1alpha1.ParseValues([]byte(valuesDocument))

	require.NoError(t, err)
	assert.Equal(t, "vnet1-deployment", values.Workloads.Deployment.Name)
	assert.Equal(t, "vnet2-vm", values.Workloads.KubevirtVM.Name)
	assert.Equal(t, "10.1.2.7", values.Workloads.KubevirtVM.SriovNet.RangeStart)
}

func TestParseValues_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		document string
		wantErr  error
	}{
		{name: "no workloads", document: "global: {}\n", wantErr: v1alpha1.ErrValuesIncomplete},
		{
			name:     "vm name missing",
			document: "workloads:\n  deployment:\n    name: vnet1\n",
			wantErr:  v1alpha1.ErrValuesIncomplete,
		},
		{name: "not yaml", document: "workloads: [", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := v1alpha1.ParseValues([]byte(tc.document))

			require.Error(t, err)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
