package k8s_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Juniper/eda-apstra-project/pkg/k8s"
	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var errListFailed = errors.New("list failed")

type podLister struct {
	pods []corev1.Pod
	err  error

	namespace string
	selector  string
}

func (l *podLister) ListPods(_ context.Context, namespace, selector string) ([]corev1.Pod, error) {
	l.namespace = namespace
	l.selector = selector

	return l.pods, l.err
}

func pod(name string, status corev1.PodStatus) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "demo"},
		Status:     status,
	}
}

func TestDiagnosePodFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pods     []corev1.Pod
		contains []string
	}{
		{
			name: "healthy and completed pods",
			pods: []corev1.Pod{
				pod("web-1", corev1.PodStatus{
					Phase:             corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{{Ready: true}},
				}),
				pod("job-1", corev1.PodStatus{Phase: corev1.PodSucceeded}),
			},
		},
		{
			name: "waiting container",
			pods: []corev1.Pod{
				pod("web-1", corev1.PodStatus{
					Phase: corev1.PodPending,
					ContainerStatuses: []corev1.ContainerStatus{{
						Image: "busybox:1.36",
						State: corev1.ContainerState{
							Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"},
						},
					}},
				}),
			},
			contains: []string{"failing pods in demo namespace:", "web-1: ImagePullBackOff for busybox:1.36"},
		},
		{
			name: "terminated container",
			pods: []corev1.Pod{
				pod("web-1", corev1.PodStatus{
					Phase: corev1.PodRunning,
					ContainerStatuses: []corev1.ContainerStatus{{
						Name: "app",
						State: corev1.ContainerState{
							Terminated: &corev1.ContainerStateTerminated{ExitCode: 1, Reason: "Error"},
						},
					}},
				}),
			},
			contains: []string{"web-1: app terminated with exit code 1 (Error)"},
		},
		{
			name: "waiting init container",
			pods: []corev1.Pod{
				pod("web-1", corev1.PodStatus{
					Phase: corev1.PodPending,
					InitContainerStatuses: []corev1.ContainerStatus{{
						Name:  "setup",
						Image: "busybox:1.36",
						State: corev1.ContainerState{
							Waiting: &corev1.ContainerStateWaiting{Reason: "CrashLoopBackOff"},
						},
					}},
				}),
			},
			contains: []string{"web-1: init container setup: CrashLoopBackOff for busybox:1.36"},
		},
		{
			name:     "phase with reason",
			pods:     []corev1.Pod{pod("web-1", corev1.PodStatus{Phase: corev1.PodFailed, Reason: "Evicted"})},
			contains: []string{"web-1: Failed (Evicted)"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			lister := &podLister{pods: testCase.pods}

			summary := k8s.DiagnosePodFailures(context.Background(), lister, "demo", "app=web")

			assert.Equal(t, "demo", lister.namespace)
			assert.Equal(t, "app=web", lister.selector)

			if len(testCase.contains) == 0 {
				assert.Empty(t, summary)

				return
			}

			for _, want := range testCase.contains {
				assert.Contains(t, summary, want)
			}
		})
	}
}

func TestDiagnosePodFailures_ListError(t *testing.T) {
	t.Parallel()

	summary := k8s.DiagnosePodFailures(context.Background(), &podLister{err: errListFailed}, "demo", "")

	assert.Equal(t, "(failed to list pods in demo: list failed)", summary)
}
