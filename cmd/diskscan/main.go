// Command diskscan answers "what is eating my disk": it discovers
// local mounts, walks them in parallel, and prints disk usage broken
// down by file category with the largest files in each.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/cosmic-utils/diskscan/internal/logging"
	"github.com/cosmic-utils/diskscan/mounts"
	"github.com/cosmic-utils/diskscan/ops"
	"github.com/cosmic-utils/diskscan/remote"
	"github.com/cosmic-utils/diskscan/scan"
)

var version = "dev"

type scanTarget struct {
	Remote         bool
	LocalPath      string // empty means scan all discovered mounts
	SSHDestination string
	RemotePath     string
}

func main() {
	os.Exit(run())
}

func run() int {
	jsonOut := flag.Bool("json", false, "Print the result as JSON on stdout")
	topFiles := flag.Int("top", 0, "Largest files kept per category (0 = default 20)")
	workers := flag.Int("workers", 0, "Concurrent mount walkers (0 = one per CPU)")
	configPath := flag.String("config", "", "Config file (default ~/.config/diskscan/config.yaml)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	listMounts := flag.Bool("mounts", false, "List discovered mount points and exit")
	exportPath := flag.String("export", "", "Write the result JSON to a file (use '-' for stdout)")
	excludeFS := flag.String("exclude-fstype", "", "Comma-separated extra filesystem types to skip")
	sshPort := flag.Int("ssh-port", 22, "SSH port for remote scans")
	sshBatch := flag.Bool("ssh-batch", false, "Disable SSH password prompts (key/agent auth only)")
	sshTimeout := flag.Int("ssh-timeout", 15, "SSH connection timeout in seconds")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "diskscan - categorized disk usage scanner\n\n")
		fmt.Fprintf(os.Stderr, "Usage: diskscan [options] [path|user@host [remote-path]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  diskscan                        Scan all local mounts\n")
		fmt.Fprintf(os.Stderr, "  diskscan /home                  Scan a single subtree\n")
		fmt.Fprintf(os.Stderr, "  diskscan --json > usage.json    Machine-readable output\n")
		fmt.Fprintf(os.Stderr, "  diskscan --mounts               Show which mounts would be scanned\n")
		fmt.Fprintf(os.Stderr, "  diskscan user@192.168.1.10 /srv Scan a remote subtree over SSH\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("diskscan %s\n", version)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	extraExclude := append(splitComma(*excludeFS), cfg.Mounts.ExcludeFSTypes...)

	if *listMounts {
		entries, err := mounts.ReadTable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		roots := mounts.FilterRoots(entries, extraExclude)
		fmt.Print(formatMounts(entries, roots))
		return 0
	}

	scanCfg := scan.Config{
		Workers:  *workers,
		TopFiles: *topFiles,
		Logger:   logger,
	}
	if scanCfg.Workers == 0 {
		scanCfg.Workers = cfg.Scan.Workers
	}
	if scanCfg.TopFiles == 0 {
		scanCfg.TopFiles = cfg.Scan.TopFiles
	}

	target, err := resolveScanTarget(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var res *scan.Result
	if target.Remote {
		res, err = runRemoteScan(ctx, target, *sshPort, *sshBatch, *sshTimeout, *jsonOut, scanCfg)
	} else {
		res, err = runLocalScan(ctx, target, extraExclude, *jsonOut, scanCfg, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *exportPath != "" {
		if err := ops.ExportJSON(res, *exportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
			return 1
		}
		if *exportPath != "-" {
			fmt.Fprintf(os.Stderr, "Exported to %s\n", *exportPath)
		}
		if !*jsonOut {
			return 0
		}
	}

	if *jsonOut {
		if *exportPath != "-" {
			if err := ops.WriteJSON(res, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
		}
		return 0
	}

	fmt.Print(formatSummary(res, terminalWidth()))
	return 0
}

// runLocalScan walks either every discovered mount or the single
// requested subtree.
func runLocalScan(ctx context.Context, target scanTarget, extraExclude []string, jsonOut bool, scanCfg scan.Config, logger *zap.Logger) (*scan.Result, error) {
	var roots []string
	if target.LocalPath == "" {
		discovered, err := mounts.Discover(extraExclude)
		if err != nil {
			return nil, err
		}
		if len(discovered) == 0 {
			return nil, fmt.Errorf("no scannable mounts found")
		}
		roots = discovered

		estimated, failed := mounts.EstimateUsedBytes(roots, logger)
		scanCfg.EstimatedTotalBytes = estimated
		scanCfg.PreflightErrors = failed
	} else {
		abs, err := filepath.Abs(target.LocalPath)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", abs)
		}
		roots = []string{abs}
	}

	progress, wait := startProgressUI(jsonOut)
	scanCfg.Progress = progress

	res, err := scan.Run(ctx, roots, scanCfg)
	if progress != nil {
		close(progress)
		wait()
	}
	return res, err
}

func runRemoteScan(ctx context.Context, target scanTarget, sshPort int, sshBatch bool, sshTimeout int, jsonOut bool, scanCfg scan.Config) (*scan.Result, error) {
	s := remote.New(remote.Config{
		Target:    target.SSHDestination,
		Port:      sshPort,
		BatchMode: sshBatch,
		Timeout:   time.Duration(sshTimeout) * time.Second,
	})

	progress, wait := startProgressUI(jsonOut)
	scanCfg.Progress = progress

	res, err := s.Scan(ctx, target.RemotePath, scanCfg)
	if progress != nil {
		close(progress)
		wait()
	}
	return res, err
}

// startProgressUI returns a snapshot channel feeding an inline
// progress bar, or nil when output is not a terminal or JSON mode is
// active. The returned wait func blocks until the bar has shut down.
func startProgressUI(jsonOut bool) (chan scan.ProgressSnapshot, func()) {
	if jsonOut || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil, func() {}
	}

	ch := make(chan scan.ProgressSnapshot, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runProgressUI(ch); err != nil {
			fmt.Fprintf(os.Stderr, "progress display error: %v\n", err)
		}
	}()
	return ch, wg.Wait
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// resolveScanTarget decides between scanning all mounts (no args), a
// local subtree, or a remote user@host target. An existing local path
// always wins over the remote interpretation.
func resolveScanTarget(args []string) (scanTarget, error) {
	if len(args) == 0 {
		return scanTarget{}, nil
	}

	first := args[0]
	if pathExists(first) {
		if len(args) > 1 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for local scan")
		}
		return scanTarget{LocalPath: first}, nil
	}

	if looksLikeRemote(first) {
		if _, _, err := remote.ParseTarget(first); err != nil {
			return scanTarget{}, err
		}
		if len(args) > 2 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for remote scan")
		}
		remotePath := "."
		if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
			remotePath = args[1]
		}
		return scanTarget{
			Remote:         true,
			SSHDestination: first,
			RemotePath:     remotePath,
		}, nil
	}

	if len(args) > 1 {
		return scanTarget{}, fmt.Errorf("too many positional arguments")
	}
	return scanTarget{LocalPath: first}, nil
}

func looksLikeRemote(raw string) bool {
	if strings.ContainsAny(raw, `/\`) {
		return false
	}
	return strings.Count(raw, "@") == 1
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitComma(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
