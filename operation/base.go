package operation

import (
	"context"
	"strings"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/idgen"
)

// Base carries the identity of an operation and the no-op defaults of the
// contract. Concrete operations embed it and implement Apply.
type Base struct {
	id   string
	name string
}

// NewBase returns the base of an operation with a fresh unique identifier.
func NewBase(name string) (Base, error) {
	if strings.TrimSpace(name) == "" {
		return Base{}, commonerrors.UndefinedVariable("operation name")
	}
	id, err := idgen.GenerateUUID4()
	if err != nil {
		return Base{}, err
	}
	return Base{id: id, name: name}, nil
}

func (b Base) ID() string {
	return b.id
}

func (b Base) Name() string {
	return b.name
}

// Compensate is a safe no-op. Operations with side effects override it.
func (b Base) Compensate(context.Context, Store, any) error {
	return nil
}

func (b Base) Close() error {
	return nil
}
