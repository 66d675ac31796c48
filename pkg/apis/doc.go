// Package apis holds the versioned configuration types of eda-validator.
//
//   - validator: validator configuration and the chart values it reads
package apis
