// Package resolver recovers workload network addresses from Kubernetes objects.
//
// Two independent strategies are provided because the data shapes have
// nothing in common:
//   - PodNetwork reads the Multus network-status annotation of the first pod
//     selected by a Deployment (a flat JSON list of interface records).
//   - VMNetwork walks a VirtualMachine's cloud-init config drive: the user-data
//     string is a cloud-config document whose first write_files entry carries
//     a netplan document. Each layer is decoded separately so a malformed
//     layer is reported by name.
//
// Every navigation step is an explicit presence check that yields a named
// verifyerr.Kind rather than guessing.
package resolver
