package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"

	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/k8s"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	nadv1 "github.com/k8snetworkplumbingwg/network-attachment-definition-client/pkg/apis/k8s.cni.cncf.io/v1"
)

var (
	errNoPods             = errors.New("no pods match the workload selector")
	errAnnotationMissing  = errors.New("annotation is not set")
	errNoInterfaceRecords = errors.New("annotation lists no interfaces")
	errInterfaceMissing   = errors.New("no record for interface")
	errInterfaceNoIPs     = errors.New("interface record has no addresses")
)

// PodAddress is the address of a pod on a named secondary network.
type PodAddress struct {
	Pod     string
	Address netip.Addr
}

// PodNetwork resolves a container workload's address from the network-status
// annotation of its first pod.
type PodNetwork struct {
	client     kube.Interface
	annotation string
	iface      string
}

// NewPodNetwork creates a PodNetwork. An empty annotation selects the Multus
// network-status key.
func NewPodNetwork(client kube.Interface, annotation, iface string) *PodNetwork {
	if annotation == "" {
		annotation = nadv1.NetworkStatusAnnot
	}

	return &PodNetwork{client: client, annotation: annotation, iface: iface}
}

// Resolve lists the pods selected by desc and reads the address of the
// configured interface from the first one.
//
// When several pods match, the first pod in API order is used.
func (r *PodNetwork) Resolve(ctx context.Context, desc *kube.WorkloadDescriptor) (*PodAddress, error) {
	resource := "deployment/" + desc.Name

	selector, err := k8s.SelectorFromMap(desc.Selector)
	if err != nil {
		return nil, verifyerr.New(verifyerr.KindNoMatchingPods, resource, desc.Namespace, err).
			WithField("spec.selector.matchLabels")
	}

	pods, err := r.client.ListPods(ctx, desc.Namespace, selector)
	if err != nil {
		return nil, verifyerr.FromAPIError(err, resource, desc.Namespace)
	}

	if len(pods) == 0 {
		return nil, verifyerr.New(
			verifyerr.KindNoMatchingPods,
			resource,
			desc.Namespace,
			fmt.Errorf("%w: %s", errNoPods, selector),
		)
	}

	pod := pods[0]
	podResource := "pod/" + pod.Name
	field := fmt.Sprintf("metadata.annotations[%s]", r.annotation)

	raw, ok := pod.Annotations[r.annotation]
	if !ok || raw == "" {
		return nil, verifyerr.New(verifyerr.KindNoNetworkStatus, podResource, pod.Namespace, errAnnotationMissing).
			WithField(field)
	}

	var records []nadv1.NetworkStatus

	err = json.Unmarshal([]byte(raw), &records)
	if err != nil {
		return nil, verifyerr.New(
			verifyerr.KindNoNetworkStatus,
			podResource,
			pod.Namespace,
			fmt.Errorf("decode network status: %w", err),
		).WithField(field)
	}

	if len(records) == 0 {
		return nil, verifyerr.New(verifyerr.KindNoNetworkStatus, podResource, pod.Namespace, errNoInterfaceRecords).
			WithField(field)
	}

	address, err := r.firstAddress(records)
	if err != nil {
		var verr *verifyerr.Error
		if errors.As(err, &verr) {
			verr.Resource = podResource
			verr.Namespace = pod.Namespace
		}

		return nil, err
	}

	return &PodAddress{Pod: pod.Name, Address: address}, nil
}

// firstAddress returns the first address of the first record named r.iface.
func (r *PodNetwork) firstAddress(records []nadv1.NetworkStatus) (netip.Addr, error) {
	for _, record := range records {
		if record.Interface != r.iface {
			continue
		}

		if len(record.IPs) == 0 {
			return netip.Addr{}, verifyerr.New(verifyerr.KindInterfaceNotFound, "", "", errInterfaceNoIPs).
				WithField(fmt.Sprintf("interface %q ips", r.iface))
		}

		addr, err := ParseAddress(record.IPs[0])
		if err != nil {
			return netip.Addr{}, verifyerr.New(verifyerr.KindInvalidAddress, "", "", err).
				WithField(fmt.Sprintf("interface %q ips[0]", r.iface))
		}

		return addr, nil
	}

	return netip.Addr{}, verifyerr.New(
		verifyerr.KindInterfaceNotFound,
		"",
		"",
		fmt.Errorf("%w %q", errInterfaceMissing, r.iface),
	).WithField(fmt.Sprintf("interface %q", r.iface))
}
