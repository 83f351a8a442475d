// Package logging adapts github.com/tddhit/tools/log into a single
// process-wide logger shared by the builder and the query engine.
package logging

import (
	"sync"

	"github.com/tddhit/tools/log"
)

var once sync.Once

// Init configures the shared logger. logPath == "" logs to stderr.
// Safe to call multiple times; only the first call takes effect, matching
// the teacher's cmd/builder and cmd/searcher which call log.Init once
// during startup.
func Init(logPath string, level int) {
	once.Do(func() {
		log.Init(logPath, level)
	})
}

func Debug(args ...interface{})            { log.Debug(args...) }
func Debugf(f string, args ...interface{}) { log.Debugf(f, args...) }
func Info(args ...interface{})             { log.Info(args...) }
func Infof(f string, args ...interface{})  { log.Infof(f, args...) }
func Error(args ...interface{})            { log.Error(args...) }
func Errorf(f string, args ...interface{}) { log.Errorf(f, args...) }
func Fatal(args ...interface{})            { log.Fatal(args...) }
func Panic(args ...interface{})            { log.Panic(args...) }
