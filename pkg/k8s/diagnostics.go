package k8s

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// PodLister lists pods by label selector.
type PodLister interface {
	ListPods(ctx context.Context, namespace, selector string) ([]corev1.Pod, error)
}

// DiagnosePodFailures returns one line per pod in namespace matching selector
// that is neither running with all containers ready nor completed.
// It returns an empty string when every matching pod is healthy.
func DiagnosePodFailures(ctx context.Context, lister PodLister, namespace, selector string) string {
	pods, err := lister.ListPods(ctx, namespace, selector)
	if err != nil {
		return fmt.Sprintf("(failed to list pods in %s: %v)", namespace, err)
	}

	var lines []string

	for i := range pods {
		problem, unhealthy := podProblem(&pods[i])
		if unhealthy {
			lines = append(lines, pods[i].Name+": "+problem)
		}
	}

	if len(lines) == 0 {
		return ""
	}

	return fmt.Sprintf("failing pods in %s namespace:\n  %s", namespace, strings.Join(lines, "\n  "))
}

// podProblem describes why pod is unhealthy, reporting false for healthy pods.
func podProblem(pod *corev1.Pod) (string, bool) {
	switch pod.Status.Phase {
	case corev1.PodSucceeded:
		return "", false
	case corev1.PodRunning:
		if allReady(pod.Status.ContainerStatuses) {
			return "", false
		}
	case corev1.PodPending, corev1.PodFailed, corev1.PodUnknown:
	}

	if reason, ok := containerProblem(pod.Status.ContainerStatuses, ""); ok {
		return reason, true
	}

	if reason, ok := containerProblem(pod.Status.InitContainerStatuses, "init container "); ok {
		return reason, true
	}

	if pod.Status.Reason != "" {
		return fmt.Sprintf("%s (%s)", pod.Status.Phase, pod.Status.Reason), true
	}

	return string(pod.Status.Phase), true
}

func allReady(statuses []corev1.ContainerStatus) bool {
	for _, status := range statuses {
		if !status.Ready {
			return false
		}
	}

	return true
}

// containerProblem reports the first waiting or failed container in statuses.
func containerProblem(statuses []corev1.ContainerStatus, prefix string) (string, bool) {
	for _, status := range statuses {
		state := status.State

		switch {
		case state.Waiting != nil && state.Waiting.Reason != "":
			if prefix != "" {
				return fmt.Sprintf("%s%s: %s for %s", prefix, status.Name, state.Waiting.Reason, status.Image), true
			}

			return fmt.Sprintf("%s for %s", state.Waiting.Reason, status.Image), true
		case state.Terminated != nil && state.Terminated.ExitCode != 0:
			return fmt.Sprintf(
				"%s%s terminated with exit code %d (%s)",
				prefix, status.Name, state.Terminated.ExitCode, state.Terminated.Reason,
			), true
		}
	}

	return "", false
}
