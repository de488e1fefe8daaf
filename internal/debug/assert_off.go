//go:build !assert

package debug

// Enabled reports whether assertions are compiled in.
const Enabled = false

// Assert is a no-op unless built with the assert tag.
func Assert(cond bool, msg interface{}) {}
