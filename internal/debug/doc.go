/*
Package debug provides conditional runtime assertions.

To enable runtime assertions, build with the assert tag. When the assert tag
is omitted, Assert compiles to an empty function and precondition checks on
hot paths (stale slot map handles, double frees) cost nothing.
*/
package debug
