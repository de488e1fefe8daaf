package hashtable

import "errors"

// ErrElemSize is the panic value (wrapped) for a negative element size.
var ErrElemSize = errors.New("hashtable: invalid element size")
