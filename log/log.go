// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log re-exports the teacher stack's logging facade so core
// components log through the same contract the rest of the Lux tree does,
// the way log/noop.go re-exports it for the no-op case.
package log

import "github.com/luxfi/log"

// Logger is the contract every core component logs through. Validation
// failures on untrusted peer input never exceed Warn; Error is reserved for
// resource and consistency conditions local to this node.
type Logger = log.Logger

// NewNoOpLogger returns a Logger that discards everything.
func NewNoOpLogger() Logger {
	return log.NewNoOpLogger()
}
