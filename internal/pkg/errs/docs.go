// Package errs holds the error kinds the order service raises and the HTTP
// adapter maps to status codes.
//
// Each kind pairs a sentinel (ErrObjectNotFound, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrValueIsRequired) with a struct that carries the
// offending parameter and unwraps to that sentinel, so callers classify with
// errors.Is:
//
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return ctx.JSON(http.StatusNotFound, ...)
//	}
package errs
