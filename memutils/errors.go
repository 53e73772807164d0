package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// HeapExhaustedError is wrapped by every error that reports a heap or segment could not grow far
// enough to satisfy a request. Test for it with errors.Is.
var HeapExhaustedError error = errors.New("heap address space exhausted")
