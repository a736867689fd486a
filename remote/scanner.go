// Package remote scans a directory tree on another machine over the
// SFTP subsystem, producing the same categorized result as a local
// scan. There is no mount table or statfs on the far side, so the
// remote path is treated as a single root and progress runs without a
// percent denominator.
package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/cosmic-utils/diskscan/category"
	"github.com/cosmic-utils/diskscan/scan"
)

const defaultRemotePath = "."

// Config configures the SSH connection for a remote scan.
type Config struct {
	Target    string // user@host
	Port      int
	BatchMode bool // never prompt; key/agent auth only
	Timeout   time.Duration
}

// Scanner scans a remote subtree over SFTP.
type Scanner struct {
	cfg  Config
	dial func(context.Context, Config) (sftpClient, io.Closer, error)
}

// sftpClient is the slice of *sftp.Client the scanner needs; tests
// substitute a fake.
type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Stat(string) (os.FileInfo, error)
	RealPath(string) (string, error)
}

// New creates a remote scanner.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg, dial: dialSFTP}
}

// Scan connects and categorizes the remote subtree. Connection and
// authentication failures are startup errors; everything after that
// follows the local skip-and-continue policy.
func (s *Scanner) Scan(ctx context.Context, remotePath string, cfg scan.Config) (*scan.Result, error) {
	if s.dial == nil {
		s.dial = dialSFTP
	}
	client, closer, err := s.dial(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return s.scanWithClient(ctx, client, remotePath, cfg)
}

func (s *Scanner) scanWithClient(ctx context.Context, client sftpClient, remotePath string, cfg scan.Config) (*scan.Result, error) {
	if strings.TrimSpace(remotePath) == "" {
		remotePath = defaultRemotePath
	}
	rootPath := cleanRemotePath(remotePath)
	if resolved, err := client.RealPath(rootPath); err == nil {
		rootPath = cleanRemotePath(resolved)
	}

	info, err := client.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("cannot stat remote path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootPath)
	}

	topN := cfg.TopFiles
	if topN <= 0 {
		topN = scan.DefaultTopFiles
	}
	agg := scan.NewAggregator(topN)
	start := time.Now()

	// Progress reporter: SFTP traversal is sequential, so a byte
	// counter plus a ticker goroutine is all the plumbing needed.
	var bytesSeen atomic.Uint64
	progressDone := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					select {
					case cfg.Progress <- scan.ProgressSnapshot{BytesProcessed: bytesSeen.Load()}:
					default:
					}
				case <-progressDone:
					return
				}
			}
		}()
	}

	incomplete := false
	stack := []string{rootPath}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			incomplete = true
			stack = nil
			continue
		default:
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := client.ReadDir(dir)
		if err != nil {
			agg.Skip()
			continue
		}
		agg.Dir()

		for _, entry := range entries {
			name := entry.Name()
			full := cleanRemotePath(pathpkg.Join(dir, name))
			mode := entry.Mode()
			switch {
			case mode&os.ModeSymlink != 0:
				// Never followed, never sized.
			case entry.IsDir():
				stack = append(stack, full)
			case mode.IsRegular():
				size := entry.Size()
				if size < 0 {
					size = 0
				}
				agg.File(full, uint64(size), category.Classify(name))
				bytesSeen.Add(uint64(size))
			default:
				// Sockets, fifos, devices.
			}
		}
	}

	if cfg.Progress != nil {
		close(progressDone)
		select {
		case cfg.Progress <- scan.ProgressSnapshot{
			BytesProcessed: bytesSeen.Load(),
			Percent:        100,
			Done:           true,
		}:
		default:
		}
	}

	return agg.Finalize(1, time.Since(start), incomplete, 0), nil
}

// ParseTarget validates a user@host scan target.
func ParseTarget(target string) (user, host string, err error) {
	if strings.TrimSpace(target) == "" {
		return "", "", fmt.Errorf("remote target is required")
	}
	user, host, ok := strings.Cut(target, "@")
	if !ok || user == "" || host == "" {
		return "", "", fmt.Errorf("invalid remote target %q: expected user@host", target)
	}
	if strings.HasPrefix(user, "-") || strings.HasPrefix(host, "-") {
		return "", "", fmt.Errorf("invalid remote target %q", target)
	}
	return user, host, nil
}

func cleanRemotePath(p string) string {
	if p == "" {
		return defaultRemotePath
	}
	clean := pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "" {
		return defaultRemotePath
	}
	return clean
}

func dialSFTP(ctx context.Context, cfg Config) (sftpClient, io.Closer, error) {
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	if port < 1 || port > 65535 {
		return nil, nil, fmt.Errorf("ssh port must be between 1 and 65535")
	}

	user, host, err := ParseTarget(cfg.Target)
	if err != nil {
		return nil, nil, err
	}

	hostCB, err := hostKeyCallback(host, port, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}
	auth, err := buildAuthMethods(user, host, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostCB,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	sshClient, err := connectSSH(dialCtx, addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}

	return client, &remoteCloser{ssh: sshClient, sftp: client}, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Make cancellation interrupt the handshake, not just the dial.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type remoteCloser struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *remoteCloser) Close() error {
	var retErr error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			retErr = err
		}
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}
	return retErr
}
