// Package glog layers the log-level switches used across ndvpal on top of
// github.com/golang/glog. Callers check LOG_DEBUG/LOG_VERBOSE before building
// expensive messages; the wrappers check them again so unguarded calls stay cheap.
package glog

import (
	"flag"
	"fmt"
	"strings"
	"sync"

	upstream "github.com/golang/glog"
)

type Verbose bool

// default is LOG_INFO
var (
	LOG_ERROR   Verbose = true
	LOG_WARN    Verbose = true
	LOG_INFO    Verbose = true
	LOG_DEBUG   Verbose = false
	LOG_VERBOSE Verbose = false

	prefix     string
	prefixLock sync.RWMutex
)

const (
	levelError   = 1
	levelWarn    = 2
	levelInfo    = 3
	levelDebug   = 4
	levelVerbose = 5
)

func Initialize(args ...interface{}) (err error) {
	if len(args) < 2 {
		err = fmt.Errorf("two arguments expected")
		return
	}
	var level string
	var appName string
	var ok bool
	if level, ok = args[0].(string); !ok {
		err = fmt.Errorf("a string log level expected")
		return
	}
	if appName, ok = args[1].(string); !ok {
		err = fmt.Errorf("a string appname expected")
		return
	}
	InitLogging(level, appName)
	return
}

// InitLogging sends everything to stderr and maps the textual level onto glog -v.
func InitLogging(level string, appName string) {
	flag.Set("logtostderr", "true")
	SetAppName(appName)

	var glevel int
	switch {
	case strings.EqualFold("error", level):
		glevel = levelError
	case strings.EqualFold("warning", level), strings.EqualFold("warn", level):
		glevel = levelWarn
	case strings.EqualFold("debug", level):
		glevel = levelDebug
	case strings.EqualFold("verbose", level):
		glevel = levelVerbose
	default:
		glevel = levelInfo
	}
	flag.Set("v", fmt.Sprint(glevel))

	LOG_ERROR = V(levelError)
	LOG_WARN = V(levelWarn)
	LOG_INFO = V(levelInfo)
	LOG_DEBUG = V(levelDebug)
	LOG_VERBOSE = V(levelVerbose)
}

func SetAppName(name string) {
	prefixLock.Lock()
	prefix = name
	prefixLock.Unlock()
}

func SetVModule(value string) {
	flag.Set("vmodule", value)
}

func V(level int) Verbose {
	return Verbose(upstream.V(upstream.Level(level)))
}

func (v Verbose) Infof(format string, args ...interface{}) {
	if v {
		upstream.InfoDepth(1, withPrefix("", fmt.Sprintf(format, args...)))
	}
}

func (v Verbose) Info(args ...interface{}) {
	if v {
		upstream.InfoDepth(1, withPrefix("", fmt.Sprint(args...)))
	}
}

func Flush() {
	upstream.Flush()
}

func Finalize() {
	upstream.Flush()
}

func withPrefix(tag string, msg string) string {
	prefixLock.RLock()
	p := prefix
	prefixLock.RUnlock()
	return p + tag + msg
}

// wrappers to glog APIs so we can check log_level before callling into real code
func Info(args ...interface{}) {
	if LOG_INFO {
		upstream.InfoDepth(1, withPrefix("", fmt.Sprint(args...)))
	}
}

func InfoDepth(depth int, args ...interface{}) {
	if LOG_INFO {
		upstream.InfoDepth(depth+1, withPrefix("", fmt.Sprint(args...)))
	}
}

func Infoln(args ...interface{}) {
	if LOG_INFO {
		upstream.InfoDepth(1, withPrefix("", fmt.Sprintln(args...)))
	}
}

func Infof(format string, args ...interface{}) {
	if LOG_INFO {
		upstream.InfoDepth(1, withPrefix("", fmt.Sprintf(format, args...)))
	}
}

func Warning(args ...interface{}) {
	if LOG_WARN {
		upstream.WarningDepth(1, withPrefix("", fmt.Sprint(args...)))
	}
}

func WarningDepth(depth int, args ...interface{}) {
	if LOG_WARN {
		upstream.WarningDepth(depth+1, withPrefix("", fmt.Sprint(args...)))
	}
}

func Warningln(args ...interface{}) {
	if LOG_WARN {
		upstream.WarningDepth(1, withPrefix("", fmt.Sprintln(args...)))
	}
}

func Warningf(format string, args ...interface{}) {
	if LOG_WARN {
		upstream.WarningDepth(1, withPrefix("", fmt.Sprintf(format, args...)))
	}
}

func Error(args ...interface{}) {
	if LOG_ERROR {
		upstream.ErrorDepth(1, withPrefix("", fmt.Sprint(args...)))
	}
}

func ErrorDepth(depth int, args ...interface{}) {
	if LOG_ERROR {
		upstream.ErrorDepth(depth+1, withPrefix("", fmt.Sprint(args...)))
	}
}

func Errorln(args ...interface{}) {
	if LOG_ERROR {
		upstream.ErrorDepth(1, withPrefix("", fmt.Sprintln(args...)))
	}
}

func Errorf(format string, args ...interface{}) {
	if LOG_ERROR {
		upstream.ErrorDepth(1, withPrefix("", fmt.Sprintf(format, args...)))
	}
}

func Debug(args ...interface{}) {
	if LOG_DEBUG {
		upstream.InfoDepth(1, withPrefix("[DEBUG] ", fmt.Sprint(args...)))
	}
}

func DebugDepth(depth int, args ...interface{}) {
	if LOG_DEBUG {
		upstream.InfoDepth(depth+1, withPrefix("[DEBUG] ", fmt.Sprint(args...)))
	}
}

func Debugln(args ...interface{}) {
	if LOG_DEBUG {
		upstream.InfoDepth(1, withPrefix("[DEBUG] ", fmt.Sprintln(args...)))
	}
}

func Debugf(format string, args ...interface{}) {
	if LOG_DEBUG {
		upstream.InfoDepth(1, withPrefix("[DEBUG] ", fmt.Sprintf(format, args...)))
	}
}

func VerboseDepth(depth int, args ...interface{}) {
	if LOG_VERBOSE {
		upstream.InfoDepth(depth+1, withPrefix("[VERBOSE] ", fmt.Sprint(args...)))
	}
}

func Verboseln(args ...interface{}) {
	if LOG_VERBOSE {
		upstream.InfoDepth(1, withPrefix("[VERBOSE] ", fmt.Sprintln(args...)))
	}
}

func Verbosef(format string, args ...interface{}) {
	if LOG_VERBOSE {
		upstream.InfoDepth(1, withPrefix("[VERBOSE] ", fmt.Sprintf(format, args...)))
	}
}

func Fatal(args ...interface{}) {
	upstream.FatalDepth(1, withPrefix("", fmt.Sprint(args...)))
}

func Fatalf(format string, args ...interface{}) {
	upstream.FatalDepth(1, withPrefix("", fmt.Sprintf(format, args...)))
}

func Exit(args ...interface{}) {
	upstream.ExitDepth(1, withPrefix("", fmt.Sprint(args...)))
}

func Exitf(format string, args ...interface{}) {
	upstream.ExitDepth(1, withPrefix("", fmt.Sprintf(format, args...)))
}
