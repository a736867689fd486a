// Package mounts discovers the local filesystems a scan should cover.
// It parses the system mount table, drops pseudo, virtual and network
// mounts, and returns a deterministic list of scan roots.
package mounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry is one parsed mount table line. Fields beyond the mount point
// and filesystem type are not needed here and are discarded.
type Entry struct {
	MountPoint string
	FSType     string
}

// excludedFSTypes is the base denylist of filesystem types that are
// never scanned: kernel/pseudo filesystems, in-memory mounts, overlay
// and compressed images, and network filesystem families. The exact
// set is kernel-dependent; callers can extend it per deployment via
// FilterRoots.
var excludedFSTypes = map[string]struct{}{
	// Kernel / pseudo
	"proc": {}, "procfs": {}, "sysfs": {}, "devpts": {}, "devfs": {},
	"cgroup": {}, "cgroup2": {}, "debugfs": {}, "tracefs": {},
	"securityfs": {}, "hugetlbfs": {}, "mqueue": {}, "fusectl": {},
	"configfs": {}, "pstore": {}, "bpf": {}, "binfmt_misc": {},
	"rpc_pipefs": {}, "nsfs": {}, "autofs": {}, "efivarfs": {},
	"selinuxfs": {}, "fuse.gvfsd-fuse": {}, "fuse.portal": {},

	// In-memory / device temp
	"tmpfs": {}, "devtmpfs": {}, "ramfs": {},

	// Union / overlay / compressed read-only
	"overlay": {}, "overlayfs": {}, "aufs": {}, "squashfs": {}, "iso9660": {},

	// Network filesystem families
	"nfs": {}, "nfs4": {}, "cifs": {}, "smbfs": {}, "smb3": {},
	"afs": {}, "ceph": {}, "glusterfs": {}, "9p": {}, "ncpfs": {},

	// User-space bridges (remote-sync style mounts)
	"fuse.sshfs": {}, "sshfs": {}, "fuse.rclone": {}, "rclone": {},
	"davfs": {}, "fuse.davfs": {},
}

// Excluded reports whether a filesystem type is on the denylist.
func Excluded(fstype string) bool {
	_, ok := excludedFSTypes[fstype]
	return ok
}

// ParseTable parses mount table text in /proc/mounts format. Malformed
// lines are skipped; they are never fatal.
func ParseTable(r io.Reader) []Entry {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, Entry{
			MountPoint: unescapeMountPath(fields[1]),
			FSType:     fields[2],
		})
	}
	return entries
}

// unescapeMountPath decodes the octal escapes the kernel uses for
// whitespace in mount points (e.g. "\040" for a space).
func unescapeMountPath(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

// FilterRoots selects local mounts from parsed entries and returns
// their mount points deduplicated and sorted lexicographically, so the
// same mount table always yields the same root list. extraExclude
// extends the base denylist with deployment-specific types.
func FilterRoots(entries []Entry, extraExclude []string) []string {
	extra := make(map[string]struct{}, len(extraExclude))
	for _, t := range extraExclude {
		extra[t] = struct{}{}
	}

	seen := make(map[string]struct{}, len(entries))
	var roots []string
	for _, e := range entries {
		if Excluded(e.FSType) {
			continue
		}
		if _, ok := extra[e.FSType]; ok {
			continue
		}
		if _, ok := seen[e.MountPoint]; ok {
			continue
		}
		seen[e.MountPoint] = struct{}{}
		roots = append(roots, e.MountPoint)
	}
	sort.Strings(roots)
	return roots
}

// mountTablePaths is tried in order by Discover.
var mountTablePaths = []string{"/proc/mounts", "/etc/mtab"}

// ReadTable reads and parses the system mount table. An unreadable
// mount table is the one startup-critical failure in this subsystem:
// nothing can be scanned without it.
func ReadTable() ([]Entry, error) {
	var lastErr error
	for _, path := range mountTablePaths {
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		entries := ParseTable(f)
		f.Close()
		return entries, nil
	}
	return nil, fmt.Errorf("cannot read mount table: %w", lastErr)
}

// Discover reads the system mount table and returns the filtered scan
// roots.
func Discover(extraExclude []string) ([]string, error) {
	entries, err := ReadTable()
	if err != nil {
		return nil, err
	}
	return FilterRoots(entries, extraExclude), nil
}
