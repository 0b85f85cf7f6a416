package config

import (
	"os"
	"strconv"

	"github.com/niceyeti/ionhop/errs"
)

// Args holds the CLI front-end's parsed key/value pairs.
type Args struct {
	DBPath          string
	DBQuery         int64
	IOPath          string
	OutPluginPath   string
	OutPluginSymbol string
	EngPluginPath   string
	EngPluginSymbol string
	ExtDir          string
	JumpHistogramMax float64
	FastExp         bool
}

// resolver is the uniform dispatch-table signature each flag key
// resolves to: a function value over *Args, in place of a macro-driven
// switch statement.
type resolver func(a *Args, value string) error

// resolvers is the CLI key table, keyed by flag name (without its
// leading dash).
var resolvers = map[string]resolver{
	"dbPath":           setDBPath,
	"dbQuery":          setDBQuery,
	"ioPath":           setIOPath,
	"outPluginPath":    setString(func(a *Args, v string) { a.OutPluginPath = v }),
	"outPluginSymbol":  setNonEmptyString(func(a *Args, v string) { a.OutPluginSymbol = v }),
	"engPluginPath":    setString(func(a *Args, v string) { a.EngPluginPath = v }),
	"engPluginSymbol":  setNonEmptyString(func(a *Args, v string) { a.EngPluginSymbol = v }),
	"extDir":           setExtDir,
	"jumpHistogramMax": setJumpHistogramMax,
	"fastExp":          setFastExp,
}

func setString(assign func(a *Args, v string)) resolver {
	return func(a *Args, v string) error {
		assign(a, v)
		return nil
	}
}

func setNonEmptyString(assign func(a *Args, v string)) resolver {
	return func(a *Args, v string) error {
		if v == "" {
			return errs.New(errs.CmdArgument, "config.setNonEmptyString", "value must not be empty")
		}
		assign(a, v)
		return nil
	}
}

func setDBPath(a *Args, v string) error {
	if _, err := os.Stat(v); err != nil {
		return errs.Wrap(errs.CmdArgument, "config.setDBPath", err)
	}
	a.DBPath = v
	return nil
}

func setDBQuery(a *Args, v string) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return errs.New(errs.CmdArgument, "config.setDBQuery", "dbQuery must be a non-negative integer")
	}
	a.DBQuery = n
	return nil
}

func setIOPath(a *Args, v string) error {
	info, err := os.Stat(v)
	if err != nil || !info.IsDir() {
		return errs.New(errs.CmdArgument, "config.setIOPath", "ioPath must be an existing directory")
	}
	a.IOPath = v
	return nil
}

func setExtDir(a *Args, v string) error {
	info, err := os.Stat(v)
	if err != nil || !info.IsDir() {
		return errs.New(errs.CmdArgument, "config.setExtDir", "extDir must be an existing directory")
	}
	a.ExtDir = v
	return nil
}

func setJumpHistogramMax(a *Args, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return errs.New(errs.CmdArgument, "config.setJumpHistogramMax", "jumpHistogramMax must be a positive double")
	}
	a.JumpHistogramMax = f
	return nil
}

func setFastExp(a *Args, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errs.New(errs.CmdArgument, "config.setFastExp", "fastExp must be true/false")
	}
	a.FastExp = b
	return nil
}

// ParseArgs resolves a flat "-key value -key value..." argument list
// into an Args, returning a CmdArgument error for any unrecognized key
// or a failed validator. Keys are matched with or without a leading
// dash.
func ParseArgs(argv []string) (*Args, error) {
	a := &Args{}
	i := 0
	for i < len(argv) {
		key := trimDashes(argv[i])
		r, ok := resolvers[key]
		if !ok {
			return nil, errs.New(errs.CmdArgument, "config.ParseArgs", "unrecognized key: "+key)
		}
		if i+1 >= len(argv) {
			return nil, errs.New(errs.CmdArgument, "config.ParseArgs", "missing value for key: "+key)
		}
		if err := r(a, argv[i+1]); err != nil {
			return nil, err
		}
		i += 2
	}
	return a, nil
}

func trimDashes(s string) string {
	for len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	return s
}
