package resolver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/netip"

	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"gopkg.in/yaml.v3"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	sigsyaml "sigs.k8s.io/yaml"
)

// Decode layers reported by MalformedEmbeddedConfig failures.
const (
	LayerUserData    = "user-data"
	LayerFileContent = "write_files[0].content"
)

// DefaultConfigVolumeKey is the KubeVirt volume source carrying inline cloud-init.
const DefaultConfigVolumeKey = "cloudInitConfigDrive"

const volumesPath = "spec.template.spec.volumes"

var (
	errObjectMissing      = errors.New("descriptor carries no object")
	errNoVolumes          = errors.New("no volumes declared")
	errNoConfigVolume     = errors.New("no volume carries inline cloud-init")
	errNoUserData         = errors.New("volume has no user data")
	errNoWriteFiles       = errors.New("write_files is empty")
	errUnsupportedEncode  = errors.New("unsupported write_files encoding")
	errEthernetMissing    = errors.New("no ethernets entry for interface")
	errEthernetNoAddress  = errors.New("ethernet has no addresses")
	errAddressNotAScalar  = errors.New("address entry is neither a string nor a single-key mapping")
	errUnexpectedVolumeTy = errors.New("volume entry is not a mapping")
)

// cloudConfig is the outer user-data document.
type cloudConfig struct {
	WriteFiles []writeFile `json:"write_files"`
}

type writeFile struct {
	Path     string `json:"path,omitempty"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
}

// netplanConfig is the inner document; both the "network:" wrapped form and
// a bare "ethernets:" mapping are accepted.
type netplanConfig struct {
	Network   *netplanNetwork            `yaml:"network"`
	Ethernets map[string]netplanEthernet `yaml:"ethernets"`
}

type netplanNetwork struct {
	Ethernets map[string]netplanEthernet `yaml:"ethernets"`
}

type netplanEthernet struct {
	// Addresses may be plain strings or "addr: {options}" mappings.
	Addresses []yaml.Node `yaml:"addresses"`
}

// VMNetwork resolves a virtual machine's address from the netplan document
// embedded in its cloud-init config drive.
type VMNetwork struct {
	client    kube.Interface
	volumeKey string
	iface     string
}

// NewVMNetwork creates a VMNetwork. An empty volumeKey selects cloudInitConfigDrive.
func NewVMNetwork(client kube.Interface, volumeKey, iface string) *VMNetwork {
	if volumeKey == "" {
		volumeKey = DefaultConfigVolumeKey
	}

	return &VMNetwork{client: client, volumeKey: volumeKey, iface: iface}
}

// Resolve fetches ref and returns the first address of the configured
// ethernet, with any prefix length removed.
func (r *VMNetwork) Resolve(ctx context.Context, ref kube.ResourceRef) (netip.Addr, error) {
	resource, namespace := ref.String(), ref.Namespace

	desc, err := r.client.Get(ctx, ref)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return netip.Addr{}, verifyerr.New(verifyerr.KindResourceNotFound, resource, namespace, err)
		}

		return netip.Addr{}, verifyerr.FromAPIError(err, resource, namespace)
	}

	if desc.Object == nil {
		return netip.Addr{}, verifyerr.New(verifyerr.KindResourceNotFound, resource, namespace, errObjectMissing)
	}

	userData, field, err := r.userData(desc.Object)
	if err != nil {
		return netip.Addr{}, verifyerr.New(verifyerr.KindNoConfigVolume, resource, namespace, err).WithField(field)
	}

	file, err := firstWriteFile(userData)
	if err != nil {
		return netip.Addr{}, r.decodeFailure(err, resource, namespace, field)
	}

	content, err := decodeContent(file)
	if err != nil {
		return netip.Addr{}, verifyerr.New(verifyerr.KindMalformedEmbeddedConfig, resource, namespace, err).
			WithLayer(LayerFileContent)
	}

	var netplan netplanConfig

	err = yaml.Unmarshal([]byte(content), &netplan)
	if err != nil {
		return netip.Addr{}, verifyerr.New(verifyerr.KindMalformedEmbeddedConfig, resource, namespace, err).
			WithLayer(LayerFileContent)
	}

	raw, err := r.firstEthernetAddress(netplan)
	if err != nil {
		return netip.Addr{}, verifyerr.New(verifyerr.KindInterfaceNotFound, resource, namespace, err).
			WithField("network.ethernets." + r.iface + ".addresses")
	}

	addr, err := ParseAddress(raw)
	if err != nil {
		return netip.Addr{}, verifyerr.New(verifyerr.KindInvalidAddress, resource, namespace, err).
			WithField("network.ethernets." + r.iface + ".addresses[0]")
	}

	return addr, nil
}

// userData returns the inline user data of the first volume carrying
// r.volumeKey, along with the field path it was read from.
func (r *VMNetwork) userData(obj *unstructured.Unstructured) (string, string, error) {
	volumes, found, err := unstructured.NestedSlice(obj.Object, "spec", "template", "spec", "volumes")
	if err != nil {
		return "", volumesPath, fmt.Errorf("read volumes: %w", err)
	}

	if !found || len(volumes) == 0 {
		return "", volumesPath, errNoVolumes
	}

	for index, entry := range volumes {
		volume, ok := entry.(map[string]any)
		if !ok {
			return "", fmt.Sprintf("%s[%d]", volumesPath, index), errUnexpectedVolumeTy
		}

		source, ok := volume[r.volumeKey].(map[string]any)
		if !ok {
			continue
		}

		field := fmt.Sprintf("%s[%d].%s.userData", volumesPath, index, r.volumeKey)

		if userData, ok := source["userData"].(string); ok && userData != "" {
			return userData, field, nil
		}

		if encoded, ok := source["userDataBase64"].(string); ok && encoded != "" {
			decoded, decodeErr := base64.StdEncoding.DecodeString(encoded)
			if decodeErr != nil {
				return "", field + "Base64", fmt.Errorf("decode user data: %w", decodeErr)
			}

			return string(decoded), field + "Base64", nil
		}

		return "", field, errNoUserData
	}

	return "", fmt.Sprintf("%s[].%s", volumesPath, r.volumeKey), errNoConfigVolume
}

// firstWriteFile decodes the outer cloud-config layer.
func firstWriteFile(userData string) (writeFile, error) {
	var config cloudConfig

	err := sigsyaml.Unmarshal([]byte(userData), &config)
	if err != nil {
		return writeFile{}, &layerError{err: err}
	}

	if len(config.WriteFiles) == 0 {
		return writeFile{}, errNoWriteFiles
	}

	return config.WriteFiles[0], nil
}

// decodeContent applies the write_files encoding to the file content.
func decodeContent(file writeFile) (string, error) {
	switch file.Encoding {
	case "", "text/plain":
		return file.Content, nil
	case "b64", "base64":
		decoded, err := base64.StdEncoding.DecodeString(file.Content)
		if err != nil {
			return "", fmt.Errorf("decode %s content: %w", file.Encoding, err)
		}

		return string(decoded), nil
	default:
		return "", fmt.Errorf("%w %q", errUnsupportedEncode, file.Encoding)
	}
}

func (r *VMNetwork) firstEthernetAddress(netplan netplanConfig) (string, error) {
	ethernets := netplan.Ethernets
	if netplan.Network != nil && netplan.Network.Ethernets != nil {
		ethernets = netplan.Network.Ethernets
	}

	ethernet, ok := ethernets[r.iface]
	if !ok {
		return "", fmt.Errorf("%w %q", errEthernetMissing, r.iface)
	}

	if len(ethernet.Addresses) == 0 {
		return "", fmt.Errorf("%w: %q", errEthernetNoAddress, r.iface)
	}

	first := ethernet.Addresses[0]

	switch {
	case first.Kind == yaml.ScalarNode:
		return first.Value, nil
	case first.Kind == yaml.MappingNode && len(first.Content) == 2:
		return first.Content[0].Value, nil
	default:
		return "", errAddressNotAScalar
	}
}

func (r *VMNetwork) decodeFailure(err error, resource, namespace, field string) error {
	var layerErr *layerError
	if errors.As(err, &layerErr) {
		return verifyerr.New(verifyerr.KindMalformedEmbeddedConfig, resource, namespace, layerErr.err).
			WithLayer(LayerUserData).
			WithField(field)
	}

	return verifyerr.New(verifyerr.KindNoEmbeddedFiles, resource, namespace, err).
		WithField("write_files")
}

// layerError marks a decode failure of the outer user-data document.
type layerError struct {
	err error
}

func (e *layerError) Error() string {
	return e.err.Error()
}

func (e *layerError) Unwrap() error {
	return e.err
}
