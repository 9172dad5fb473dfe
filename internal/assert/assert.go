// Package assert provides the trap-vs-downgrade policy spec'd for
// compiler and value invariant violations (register leaks, LIFO
// violations, fat-NaN construction): debug builds panic immediately so
// the violation is observable where it happens; release builds
// (build tag "release") skip the check entirely, per spec "release
// builds are undefined-but-must-not-corrupt".
package assert

// Debug panics with msg if cond is false. Built out entirely under the
// "release" build tag by assert_release.go.
func Debug(cond bool, msg string) {
	debugAssert(cond, msg)
}
