// Package scenario runs the end-to-end connectivity verification of a
// release: wait for the container workload and the virtual machine, resolve
// an address for each from two independent sources, ping the virtual
// machine from the first workload pod and assert every echo came back.
//
// Stages run strictly in order and the first failure aborts the run. Every
// failure is a *verifyerr.Error tagged with the stage that produced it.
package scenario
