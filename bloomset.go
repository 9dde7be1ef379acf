package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/weiiwang01/bloomset/internal/bloom"
	"github.com/weiiwang01/bloomset/internal/loader"
	"github.com/weiiwang01/bloomset/internal/server"
	"golang.org/x/time/rate"
)

var version string

type files []string

func (fs *files) String() string {
	return strings.Join(*fs, ",")
}

func (fs *files) Set(s string) error {
	*fs = append(*fs, s)
	return nil
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	size := flag.Int("size", 0, "size of the filter in bits")
	hashes := flag.Int("hashes", 0, "number of hash functions to use")
	expect := flag.Int("expect", 0, "expected number of keys, used to pick -size and -hashes when they are not set")
	fp := flag.Float64("fp", 0.01, "target false positive rate when sizing from -expect")
	serve := flag.String("serve", "", "serve the filter over HTTP on this address after loading")
	requestRate := flag.Uint("rate", 0, "HTTP request rate limit in requests per second")
	debug := flag.Bool("debug", false, "enable debug messages")
	versionFlag := flag.Bool("version", false, "show version number and quit")
	var adds, searches files
	flag.Var(&adds, "add", "insert the keys of a file, - for stdin. --add can be used multiple times")
	flag.Var(&searches, "search", "look up the keys of a file, - for stdin. --search can be used multiple times")
	flag.Parse()
	if *versionFlag {
		fmt.Println("bloomset", version)
		os.Exit(0)
	}
	loggingLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: loggingLevel}))
	if *debug {
		loggingLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(logger)

	m, k := *size, *hashes
	if *expect != 0 && m == 0 && k == 0 {
		var err error
		m, k, err = bloom.EstimateParameters(*expect, *fp)
		if err != nil {
			fatal("invalid sizing parameters, -expect must be at least 1 and -fp in (0, 1)", "expect", *expect, "fp", *fp, "error", err)
		}
		logger.Debug("filter sized from expected keys", "expect", *expect, "fp", *fp, "size", m, "hashes", k)
	}
	filter, err := bloom.NewLocked(m, k)
	if err != nil {
		fatal("invalid filter parameters, -size and -hashes must be at least 1", "size", m, "hashes", k, "error", err)
	}
	logger.Info("filter created", "size", m, "hashes", k)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, path := range adds {
		var n int
		if path == "-" {
			n, err = loader.Load(ctx, filter, os.Stdin)
		} else {
			n, err = loader.LoadFile(ctx, filter, path)
		}
		if err != nil {
			fatal("file format error", "file", path, "error", err)
		}
		logger.Info("keys inserted", "file", path, "keys", n)
	}

	report := func(res loader.Result) {
		if err := loader.WriteResult(os.Stdout, res); err != nil {
			fatal("failed to write result", "error", err)
		}
	}
	for _, path := range searches {
		if path == "-" {
			err = loader.Search(ctx, filter, os.Stdin, report)
		} else {
			err = loader.SearchFile(ctx, filter, path, report)
		}
		if err != nil {
			fatal("failed to search keys", "file", path, "error", err)
		}
	}

	if *serve == "" {
		if len(adds) == 0 && len(searches) == 0 {
			logger.Warn("nothing to do, use -add, -search or -serve")
		}
		return
	}
	limit := rate.Limit(*requestRate)
	if *requestRate == 0 {
		slog.Debug("request rate limit", "rps", "+Inf")
		limit = rate.Inf
	} else {
		slog.Debug("request rate limit", "rps", *requestRate)
	}
	srv := server.New(filter, rate.NewLimiter(limit, int((*requestRate)*5)))
	if err := srv.ListenAndServe(ctx, *serve); err != nil {
		fatal("server failed", "error", err)
	}
}
