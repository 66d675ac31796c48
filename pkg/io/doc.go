// Package io groups configuration input handling.
//
// Subpackages:
//   - config-manager: the generic loader contract and the viper-backed
//     validator configuration loader
package io
