package smt

import "errors"

// ErrBadProof is returned by proof verification helpers and by AddBranch
// when a proof fails its sanity check or its hash chain does not replay to
// the claimed root. It carries no data beyond its identity: a caller's own
// error type only needs to be able to wrap or compare against it (via
// errors.Is), not decode anything out of it.
var ErrBadProof = errors.New("smt: bad proof")

// errKeyAlreadyEmpty signals that a delete found nothing to delete; it never
// escapes this package. UpdateForRoot/RemoveForRoot treat it as a no-op and
// return the prior root unchanged; deleting an absent key is not an error.
var errKeyAlreadyEmpty = errors.New("smt: key already empty")
