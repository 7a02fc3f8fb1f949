// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package logging configures the hclog loggers shared by the rest of
// the program. Log verbosity is controlled by the TFLSM_LOG environment
// variable, which accepts the usual hclog level names.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// envLog is the environment variable that controls the log level.
const envLog = "TFLSM_LOG"

var logger hclog.Logger

func init() {
	logger = newRootLogger(os.Stderr)
}

func newRootLogger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "tfls-manager",
		Level:  globalLogLevel(),
		Output: w,
	})
}

// RootLogger returns the process-wide parent logger.
func RootLogger() hclog.Logger {
	return logger
}

func globalLogLevel() hclog.Level {
	envLevel := strings.ToUpper(os.Getenv(envLog))
	if envLevel == "" {
		return hclog.Off
	}
	if isValidLogLevel(envLevel) {
		return hclog.LevelFromString(envLevel)
	}
	// An unknown level selects full verbosity, matching the historical
	// behavior of TF_LOG accepting any non-empty value.
	return hclog.Trace
}

func isValidLogLevel(level string) bool {
	for _, l := range []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF"} {
		if level == l {
			return true
		}
	}
	return false
}
