// Package install implements the installation pipeline: the fixed, ordered,
// fail-fast sequence of privileged steps that partitions the target disk,
// installs the base system into the staging root, configures it, and sets up
// the boot path.
//
// The pipeline runs synchronously and supports exactly one run at a time.
// All run state lives in the Context passed through the steps; there are no
// ambient globals, so tests drive the whole pipeline against a scripted fake
// runner.
package install
