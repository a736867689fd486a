//go:build !windows

package mounts

import "golang.org/x/sys/unix"

// usedBytes returns (total blocks - free blocks) * block size for the
// filesystem holding path. This is a constant-time statfs query, not a
// tree walk.
func usedBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	bsize := uint64(stat.Bsize)
	total := stat.Blocks * bsize
	free := stat.Bfree * bsize
	if free > total {
		return 0, nil
	}
	return total - free, nil
}
