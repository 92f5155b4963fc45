// Package lifecycle runs named build actions and their finalizers.
//
// A task may be finalized by other tasks. Finalizers run after the task's
// action succeeds, in the order they were added; when the action fails they
// are skipped and the failure is returned.
package lifecycle
