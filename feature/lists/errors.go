package lists

import "errors"

var (
	// ErrListNotFound is returned when the target list does not exist.
	ErrListNotFound = errors.New("list not found")
	// ErrForbidden is returned when the caller does not own the target list.
	ErrForbidden = errors.New("list not owned by caller")
	// ErrImmutable is returned when the partition or field cannot be changed.
	ErrImmutable = errors.New("list is read only")
	// ErrDuplicate is returned when a list with the same slug or key already exists.
	ErrDuplicate = errors.New("list already exists")
	// ErrInvalid is returned for input that cannot produce a valid list.
	ErrInvalid = errors.New("invalid list input")
)

// AccessPolicy decides how access failures reach callers.
// Every mutation and lookup passes its error through Resolve.
type AccessPolicy struct {
	// Distinguish keeps not-found, forbidden and read-only failures as errors.
	// When false they resolve to an empty result.
	Distinguish bool
}

// Resolve returns nil for access failures unless the policy distinguishes them.
func (p AccessPolicy) Resolve(err error) error {
	if err == nil || p.Distinguish {
		return err
	}
	if IsAccessError(err) {
		return nil
	}
	return err
}

// IsAccessError reports whether err is a not-found, forbidden or read-only failure.
func IsAccessError(err error) bool {
	return errors.Is(err, ErrListNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrImmutable)
}
