// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"fmt"
	"os"

	"github.com/mitchellh/panicwrap"
)

// This output is shown if a panic happens.
const panicOutput = `
!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!! CRASH !!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!

terraform-ls-manager crashed! This is always indicative of a bug within
the tool itself. A crash log has been placed at %[1]q relative to your
current working directory. Please report the crash at

    https://github.com/hashicorp/terraform-ls/issues

and attach the crash log after redacting anything sensitive.

!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!! CRASH !!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!
`

// PanicHandler is called by panicwrap in the parent process when the
// wrapped child panics. It preserves the panic output in a crash log
// and prints a short notice instead of the raw stack trace.
func PanicHandler(raw string) {
	f, err := os.CreateTemp(".", "crash.*.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create crash log file: %s\n", err)
		fmt.Fprint(os.Stderr, raw)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(raw); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write the crash log: %s\n", err)
		fmt.Fprint(os.Stderr, raw)
		return
	}
	fmt.Fprintf(os.Stderr, panicOutput, f.Name())
}

// WrapMain re-executes the process under panicwrap so panics in fn are
// routed through PanicHandler. The child process runs fn directly.
func WrapMain(fn func() int) int {
	exitStatus, err := panicwrap.BasicWrap(PanicHandler)
	if err != nil {
		// Wrapping failed; run unwrapped rather than not at all.
		fmt.Fprintf(os.Stderr, "Failed to set up the panic wrapper: %s\n", err)
		return fn()
	}
	if exitStatus >= 0 {
		// Parent process: the child has already run and exited.
		return exitStatus
	}
	return fn()
}
