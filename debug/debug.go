package debug

import (
	"os"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	enabled atomic.Bool
	verbose atomic.Pointer[zap.Logger]
)

func init() {
	debugEnv, exists := os.LookupEnv("REMOTEPAY_DEBUG")
	if exists {
		if val, err := strconv.ParseBool(debugEnv); err == nil {
			enabled.Store(val)
		}
	}
}

// Logger returns the logger components fall back to when none is injected.
// It discards everything unless debugging is enabled.
func Logger() *zap.Logger {
	if !enabled.Load() {
		return zap.NewNop()
	}

	if l := verbose.Load(); l != nil {
		return l
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	if !verbose.CompareAndSwap(nil, l) {
		return verbose.Load()
	}
	return l
}

func Enabled() bool {
	return enabled.Load()
}

func Enable() {
	enabled.Store(true)
}

func Disable() {
	enabled.Store(false)
}
