// Package v1alpha1 defines the eda-validator configuration file format and
// the subset of the Helm values document the verification reads.
package v1alpha1
