// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"wmlconv/config"
	"wmlconv/preprocess"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by conversion subcommands
	Overwrite bool
	NoDirs    bool
	// forced encoding of non UTF-8 file names in archives
	CodePage encoding.Encoding
	// forced encoding of HTML input, nil means detect
	Charset encoding.Encoding
	// text substitutions from command line, applied after configured ones
	Replacements []preprocess.Replacement

	start         time.Time
	restoreStdLog func()
}

// EnvFromContext returns environment attached by ContextWithEnv, commands
// cannot run without it.
func EnvFromContext(ctx context.Context) *LocalEnv {
	env, ok := ctx.Value(envKey{}).(*LocalEnv)
	if !ok {
		panic("program environment is missing from context")
	}
	return env
}

// ContextWithEnv attaches fresh environment, uptime is counted from here.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

// Uptime is time since environment was created.
func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends standard library log output to zap until
// RestoreStdLog is called.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

// RestoreStdLog syncs the log and undoes RedirectStdLog.
func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
