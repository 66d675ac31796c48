// Package verifyerr provides the structured failure type shared by the
// verification pipeline.
//
// Every failure carries a Kind (what went wrong) and a Stage (where it went
// wrong) so a report always answers "which stage failed" without inspecting
// logs. Kinds are also exposed as sentinel errors, which makes
// errors.Is(err, verifyerr.ErrTimeout) work on wrapped failures.
package verifyerr
