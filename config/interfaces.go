// Package config defines the engine configuration entries and how they are
// loaded from the environment.
package config

//go:generate go tool mockgen -destination=./mocks/mock_$GOPACKAGE.go -package=mocks github.com/forgekit/forge/$GOPACKAGE IEngineConfiguration

type IEngineConfiguration interface {
	// Validate validates configuration entries.
	Validate() error
}
