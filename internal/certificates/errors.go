package certificates

import "errors"

var ErrUnknownKind = errors.New("unknown certificate kind")
