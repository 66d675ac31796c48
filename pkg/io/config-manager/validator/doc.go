// Package configmanager loads the eda-validator configuration through viper.
//
// Precedence is defaults < config file < EDA_VALIDATOR_* environment
// variables < command-line flags. The config file is eda-validator.yaml in
// the working directory or $HOME/.config/eda-validator unless a path is set
// explicitly.
//
// The package shares the configmanager name with its parent. Import it with
// an alias:
//
//	import validatorconfigmanager "github.com/Juniper/eda-apstra-project/pkg/io/config-manager/validator"
package configmanager
