package operation

import "github.com/forgekit/forge/commonerrors"

// PropertyAs reads a property from the store and checks it has the expected
// type. It returns ErrNotFound when the key is absent and ErrInvalid when the
// stored value has a different type, so silent cast failures cannot happen.
func PropertyAs[T any](store Store, key string) (value T, err error) {
	if store == nil {
		err = commonerrors.UndefinedVariable("property store")
		return
	}
	raw, ok := store.Property(key)
	if !ok {
		err = commonerrors.Newf(commonerrors.ErrNotFound, "no property %q", key)
		return
	}
	value, ok = raw.(T)
	if !ok {
		err = commonerrors.Newf(commonerrors.ErrInvalid, "property %q holds a %T, not a %T", key, raw, value)
	}
	return
}
