// Command profiler runs pack, read and extract workloads against a
// generated directory tree for CPU, heap, trace and wall-clock profiling.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/felixge/fgprof"

	"github.com/meigma/oaktms"
)

type config struct {
	mode       string
	files      int
	fileSize   int
	dirCount   int
	pattern    string
	chunkSize  uint64
	workers    int
	fgProfile  string
	duration   time.Duration
	iterations int
	pprofAddr  string
	cpuProfile string
	memProfile string
	traceFile  string
	tempDir    string
	keepTemp   bool
	randomSeed int64
}

//nolint:gocognit,gocyclo // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	src := filepath.Join(dir, "src")
	if err := makeFiles(src, cfg.files, cfg.fileSize, cfg.dirCount, cfg.pattern, cfg.randomSeed); err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}

	var archive bytes.Buffer
	if _, err := oaktms.Create(context.Background(), src, &archive, createOptions(cfg)...); err != nil {
		log.Fatal(err)
	}

	var stopFG func() error
	if cfg.fgProfile != "" {
		fgFile, fgErr := os.Create(cfg.fgProfile)
		if fgErr != nil {
			log.Fatal(fgErr)
		}
		stopFG = fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				log.Printf("fgprof stop error: %v", err)
			}
			_ = fgFile.Close()
		}()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, src, archive.Bytes(), filepath.Join(dir, "out"))
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("mode=%s ops=%d bytes=%d elapsed=%s throughput=%.2f MB/s\n",
		cfg.mode,
		stats.ops,
		stats.bytes,
		stats.elapsed,
		float64(stats.bytes)/(1024*1024)/stats.elapsed.Seconds(),
	)
}

type profileStats struct {
	ops     int
	bytes   int64
	elapsed time.Duration
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func runProfile(cfg config, src string, archive []byte, outDir string) (profileStats, error) {
	ctx := context.Background()
	start := time.Now()
	ops := 0
	var byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < cfg.iterations
		}
		return time.Since(start) < cfg.duration
	}

	readOpts := []oaktms.ReadOption{oaktms.ReadWithWorkers(cfg.workers)}
	switch cfg.mode {
	case "pack":
		for shouldContinue() {
			var buf bytes.Buffer
			res, err := oaktms.Create(ctx, src, &buf, createOptions(cfg)...)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += int64(res.TotalUncompressedSize) //nolint:gosec // payload fits in a uint32
			ops++
		}
	case "read":
		for shouldContinue() {
			a, err := oaktms.Read(ctx, bytes.NewReader(archive), readOpts...)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += int64(a.Header().TotalUncompressedSize)
			ops++
		}
	case "extract":
		a, err := oaktms.Read(ctx, bytes.NewReader(archive), readOpts...)
		if err != nil {
			return profileStats{}, err
		}
		for shouldContinue() {
			if err := os.RemoveAll(outDir); err != nil {
				return profileStats{}, err
			}
			stats, err := a.Extract(ctx, outDir)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += int64(stats.Bytes) //nolint:gosec // bounded by payload size
			ops++
		}
	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	return profileStats{
		ops:     ops,
		bytes:   byteCount,
		elapsed: time.Since(start),
	}, nil
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func createOptions(cfg config) []oaktms.CreateOption {
	return []oaktms.CreateOption{
		oaktms.CreateWithChunkSize(cfg.chunkSize),
		oaktms.CreateWithWorkers(cfg.workers),
		oaktms.CreateWithTimestamp(time.Unix(0, 0).UTC()),
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "read", "mode: pack, read, extract")
	flag.IntVar(&cfg.files, "files", 512, "number of files")
	flag.IntVar(&cfg.fileSize, "file-size", 16<<10, "file size in bytes")
	flag.IntVar(&cfg.dirCount, "dir-count", 16, "number of directories")
	flag.StringVar(&cfg.pattern, "pattern", "compressible", "pattern: compressible or random")
	flag.Uint64Var(&cfg.chunkSize, "chunk-size", oaktms.DefaultChunkSize, "uncompressed chunk size")
	flag.IntVar(&cfg.workers, "workers", 1, "goroutines compressing or inflating chunks")
	flag.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for dataset")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	return cfg
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "oaktms-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

// makeFiles lays out a tree shaped like a hotfix bundle: one OakGame/TMS
// directory plus dirCount content directories.
func makeFiles(dir string, fileCount, fileSize, dirCount int, pattern string, seed int64) error {
	if dirCount <= 0 {
		dirCount = 1
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // intentional use for reproducible benchmarks
	for i := range fileCount {
		relPath := fmt.Sprintf("OakGame/Content/dir%02d/file%05d.dat", i%dirCount, i)
		if i%dirCount == 0 {
			relPath = fmt.Sprintf("OakGame/TMS/file%05d.dat", i)
		}
		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler
			return err
		}

		content := make([]byte, fileSize)
		switch pattern {
		case "random":
			if _, err := rng.Read(content); err != nil {
				return err
			}
		default:
			fillByte := byte('a' + (i % 26))
			for j := range content {
				content[j] = fillByte
			}
			if len(content) > 0 {
				content[0] = byte(i)
			}
		}

		if err := os.WriteFile(fullPath, content, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
			return err
		}
	}
	return nil
}
