// Package resource defines the contract for releasable engine resources such
// as pooled execution contexts.
package resource

import (
	"fmt"
	"io"
)

//go:generate go tool mockgen -destination=./mocks/mock_$GOPACKAGE.go -package=mocks github.com/forgekit/forge/$GOPACKAGE ICloseableResource

// ICloseableResource defines a resource which must be released after use and
// must not be used once released.
type ICloseableResource interface {
	io.Closer
	fmt.Stringer
	IsClosed() bool
}
