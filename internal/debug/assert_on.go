//go:build assert

package debug

// Enabled reports whether assertions are compiled in.
const Enabled = true

// Assert will panic with msg if cond is false. Errors are panicked as is so
// callers can match them with errors.Is.
//
// msg must be a string, error, func() string or fmt.Stringer.
func Assert(cond bool, msg interface{}) {
	if cond {
		return
	}
	if err, ok := msg.(error); ok {
		panic(err)
	}
	panic(getStringValue(msg))
}
