// Package validator contains the API types of the eda-validator configuration.
package validator
