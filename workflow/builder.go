package workflow

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/atomic"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/idgen"
	"github.com/forgekit/forge/operation"
)

// Builder assembles a workflow. Zero value is not usable; use NewBuilder.
type Builder struct {
	name        string
	description string
	version     string
	operations  []operation.Operation
	properties  map[string]any
}

// NewBuilder returns a builder for a workflow with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:       name,
		version:    "1.0.0",
		properties: map[string]any{},
	}
}

// Description sets the workflow description.
func (b *Builder) Description(description string) *Builder {
	b.description = description
	return b
}

// Version sets the workflow version.
func (b *Builder) Version(version string) *Builder {
	b.version = version
	return b
}

// Property records a frozen key/value pair on the workflow.
func (b *Builder) Property(key string, value any) *Builder {
	b.properties[key] = value
	return b
}

// Operations appends operations to the sequence, in order.
func (b *Builder) Operations(ops ...operation.Operation) *Builder {
	b.operations = append(b.operations, ops...)
	return b
}

func (b *Builder) validate() error {
	return validation.Errors{
		"name":       validation.Validate(b.name, validation.Required),
		"version":    validation.Validate(b.version, validation.Required),
		"operations": validation.Validate(b.operations, validation.Required, validation.Each(validation.NotNil)),
	}.Filter()
}

// Build validates the definition and returns the immutable workflow. The
// operation sequence and properties are copied so the builder can be reused
// or mutated afterwards without affecting the result.
func (b *Builder) Build() (*Workflow, error) {
	if err := b.validate(); err != nil {
		return nil, commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid workflow definition")
	}
	id, err := idgen.GenerateUUID4()
	if err != nil {
		return nil, err
	}
	ops := make([]operation.Operation, len(b.operations))
	copy(ops, b.operations)
	props := make(map[string]any, len(b.properties))
	for k, v := range b.properties {
		props[k] = v
	}
	return &Workflow{
		id:          id,
		name:        b.name,
		description: b.description,
		version:     b.version,
		createdAt:   time.Now(),
		operations:  ops,
		properties:  props,
		closed:      atomic.NewBool(false),
	}, nil
}
