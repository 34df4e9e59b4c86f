// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gitalong is a thin argument-parsing and output-formatting shell
// around the gitalong-go library: it exists to exercise the library
// end-to-end, not to be a polished command-line tool.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/douglaslassance/gitalong-go/batch"
	"github.com/douglaslassance/gitalong-go/cache/boltcache"
	"github.com/douglaslassance/gitalong-go/log"
	"github.com/douglaslassance/gitalong-go/repository"
)

var (
	registry = repository.NewRegistry()
	verbose  = flag.Bool("v", false, "enable verbose logging")
	cacheDB  = flag.String("cache", defaultCachePath(), "path to the on-disk change-list cache (empty disables it)")
	logger   = log.New(os.Stderr)
	changes  *boltcache.Cache
)

// defaultCachePath returns the per-user cache location for the change-list
// cache, or "" (disabling it) if the platform's cache directory cannot be
// resolved.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + "/gitalong/changes.db"
}

// newEngine returns a batch.Engine backed by the shared registry, using the
// on-disk change-list cache when one was successfully opened.
func newEngine() *batch.Engine {
	if changes != nil {
		return batch.NewEngineWithCache(registry, changes)
	}
	return batch.NewEngine(registry)
}

type command interface {
	Name() string           // "claim"
	Args() string           // "<paths...>"
	ShortHelp() string      // "Claim files for editing"
	LongHelp() string       // "Claim files for editing, publishing the claim to the store..."
	Register(*flag.FlagSet) // command-specific flags
	Run([]string) error
}

func main() {
	commands := []command{
		&setupCommand{},
		&configCommand{},
		&statusCommand{},
		&claimCommand{},
		&releaseCommand{},
		&updateCommand{},
		&versionCommand{},
	}

	usage := func() {
		fmt.Fprintln(os.Stderr, "Usage: gitalong <command>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr)
		w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
		for _, c := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", c.Name(), c.ShortHelp())
		}
		w.Flush()
		fmt.Fprintln(os.Stderr)
	}

	if len(os.Args) <= 1 || len(os.Args) == 2 && (strings.Contains(strings.ToLower(os.Args[1]), "help") || strings.ToLower(os.Args[1]) == "-h") {
		usage()
		os.Exit(1)
	}

	for _, c := range commands {
		if c.Name() != os.Args[1] {
			continue
		}

		fs := flag.NewFlagSet(c.Name(), flag.ExitOnError)
		fs.BoolVar(verbose, "v", false, "enable verbose logging")
		fs.StringVar(cacheDB, "cache", *cacheDB, "path to the on-disk change-list cache (empty disables it)")
		c.Register(fs)
		resetUsage(fs, c.Name(), c.Args(), c.LongHelp())

		if err := fs.Parse(os.Args[2:]); err != nil {
			fs.Usage()
			os.Exit(1)
		}

		if *cacheDB != "" {
			db, err := boltcache.Open(*cacheDB)
			if err != nil {
				vlogf("opening change-list cache at %s: %v", *cacheDB, err)
			} else {
				changes = db
				defer db.Close()
			}
		}

		if err := c.Run(fs.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "gitalong: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "gitalong: no such command %q\n", os.Args[1])
	usage()
	os.Exit(1)
}

func resetUsage(fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gitalong %s %s\n", name, args)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, strings.TrimSpace(longHelp))
		fmt.Fprintln(os.Stderr)
		if hasFlags {
			fmt.Fprintln(os.Stderr, "Flags:")
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, flagBlock.String())
		}
	}
}

func vlogf(format string, args ...interface{}) {
	if !*verbose {
		return
	}
	logger.LogGitalongfln(format, args...)
}
