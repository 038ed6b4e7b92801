// Package idgen generates the identifiers used for workflows, operations and
// execution contexts.
package idgen

import (
	"github.com/gofrs/uuid/v5"

	"github.com/forgekit/forge/commonerrors"
)

// GenerateUUID4 generates a random UUID.
func GenerateUUID4() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", commonerrors.WrapError(commonerrors.ErrUnexpected, err, "failed generating uuid")
	}
	return id.String(), nil
}

// IsValidUUID returns whether the string is a valid UUID.
func IsValidUUID(u string) bool {
	_, err := uuid.FromString(u)
	return err == nil
}
