package utils

import "fmt"

// Must panics if err is set. For bootstrap code where a failure is a bug,
// such as registering the built-in classes.
func Must[E comparableError](err E) {
	var zero E
	if err != zero {
		panic(err)
	}
}

// Must1 returns v, or panics if err is set.
func Must1[T any, E comparableError](v T, err E) T {
	var zero E
	if err != zero {
		panic(err)
	}
	return v
}

// Or returns v unless it is the zero value, in which case it returns vElse.
func Or[T comparable](v T, vElse T) T {
	var zero T
	if v == zero {
		return vElse
	}
	return v
}

// Assert panics with a formatted message if v is the zero value.
func Assert[T comparable](v T, msg string, args ...any) {
	var zero T
	if v == zero {
		panic(fmt.Sprintf("Assert failed: "+msg, args...))
	}
}

// Passing a nil *SomeError through Must as a plain error would produce a
// non-nil interface value and a spurious panic.
type comparableError interface {
	comparable
	error
}
