package remote

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

// defaultKeyFiles are tried in order when no agent is available.
var defaultKeyFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

func knownHostsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

// hostKeyCallback verifies the server key against ~/.ssh/known_hosts.
// Unknown hosts are trust-on-first-use after an interactive yes; a key
// that does not match the recorded one is always fatal. Batch mode
// refuses unknown hosts outright.
func hostKeyCallback(host string, port int, batch bool) (ssh.HostKeyCallback, error) {
	path, err := knownHostsPath()
	if err != nil {
		return nil, err
	}
	if err := ensureKnownHostsFile(path); err != nil {
		return nil, err
	}
	check, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := check(hostname, remote, key)
		if err == nil {
			return nil
		}

		var keyErr *knownhosts.KeyError
		if !errors.As(err, &keyErr) {
			return err
		}
		if len(keyErr.Want) > 0 {
			return fmt.Errorf("host key for %s has changed: %w", hostname, err)
		}

		// Unknown host.
		if batch {
			return fmt.Errorf("unknown host %s in batch mode: %w", hostname, err)
		}
		fingerprint := ssh.FingerprintSHA256(key)
		fmt.Fprintf(os.Stderr, "The authenticity of host %s can't be established.\n", hostname)
		fmt.Fprintf(os.Stderr, "%s key fingerprint is %s.\n", key.Type(), fingerprint)
		if !promptYesNo("Are you sure you want to continue connecting (yes/no)? ") {
			return fmt.Errorf("host key verification failed for %s", hostname)
		}
		if err := addKnownHost(path, hostname, key); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not update %s: %v\n", path, err)
		}
		return nil
	}, nil
}

func ensureKnownHostsFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

func addKnownHost(path, hostname string, key ssh.PublicKey) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %s\n",
		knownhosts.Normalize(hostname),
		key.Type(),
		base64.StdEncoding.EncodeToString(key.Marshal()))
	_, err = f.WriteString(line)
	return err
}

func promptYesNo(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

// buildAuthMethods assembles the auth chain: ssh-agent if one is
// running, then any default private keys, then (outside batch mode) an
// interactive password prompt as the last resort.
func buildAuthMethods(user, host string, batch bool) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if m := agentAuthMethod(); m != nil {
		methods = append(methods, m)
	}
	if signers := loadDefaultKeySigners(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}
	if !batch {
		methods = append(methods, ssh.PasswordCallback(passwordPrompter(user, host)))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH auth methods available for %s@%s (no agent, no keys, batch mode)", user, host)
	}
	return methods, nil
}

func agentAuthMethod() ssh.AuthMethod {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers)
}

func loadDefaultKeySigners() []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var signers []ssh.Signer
	for _, name := range defaultKeyFiles {
		data, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			// Passphrase-protected keys go through the agent instead.
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

func passwordPrompter(user, host string) func() (string, error) {
	return func() (string, error) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("cannot prompt for password: stdin is not a terminal")
		}
		fmt.Fprintf(os.Stderr, "%s@%s's password: ", user, host)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
}
