package mounts

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleTable = `sysfs /sys sysfs rw,nosuid,nodev,noexec,relatime 0 0
proc /proc proc rw,nosuid,nodev,noexec,relatime 0 0
devtmpfs /dev devtmpfs rw,nosuid,size=8087016k,nr_inodes=2021754,mode=755 0 0
tmpfs /run tmpfs rw,nosuid,nodev,mode=755 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
/dev/nvme0n1p1 /boot/efi vfat rw,relatime 0 0
/dev/sda1 /home btrfs rw,relatime,ssd 0 0
overlay /var/lib/docker/overlay2/abc/merged overlay rw,relatime 0 0
server:/export /mnt/nfs nfs4 rw,relatime 0 0
//nas/media /mnt/nas cifs rw,relatime 0 0
user@host:/data /mnt/ssh fuse.sshfs rw,nosuid,nodev 0 0
/dev/loop3 /snap/core/1234 squashfs ro,nodev,relatime 0 0
malformed-line
/dev/sdb1 /mnt/backup ext4 rw,relatime 0 0
/dev/sdb1 /mnt/backup ext4 rw,relatime 0 0
`

func TestParseTable_SkipsMalformedLines(t *testing.T) {
	entries := ParseTable(strings.NewReader(sampleTable))
	for _, e := range entries {
		if e.MountPoint == "malformed-line" || e.MountPoint == "" {
			t.Fatalf("malformed line leaked into entries: %+v", e)
		}
	}
	if len(entries) != 14 {
		t.Fatalf("got %d entries, want 14", len(entries))
	}
}

func TestParseTable_UnescapesOctal(t *testing.T) {
	entries := ParseTable(strings.NewReader(`/dev/sdc1 /mnt/my\040disk ext4 rw 0 0`))
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].MountPoint != "/mnt/my disk" {
		t.Fatalf("mount point = %q, want %q", entries[0].MountPoint, "/mnt/my disk")
	}
}

func TestFilterRoots_ExcludesPseudoAndNetwork(t *testing.T) {
	entries := ParseTable(strings.NewReader(sampleTable))
	roots := FilterRoots(entries, nil)

	want := []string{"/", "/boot/efi", "/home", "/mnt/backup"}
	if !reflect.DeepEqual(roots, want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
}

func TestFilterRoots_Deterministic(t *testing.T) {
	entries := ParseTable(strings.NewReader(sampleTable))
	first := FilterRoots(entries, nil)
	for i := 0; i < 5; i++ {
		if got := FilterRoots(entries, nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: roots = %v, want %v", i, got, first)
		}
	}
}

func TestFilterRoots_ExtraExclude(t *testing.T) {
	entries := ParseTable(strings.NewReader(sampleTable))
	roots := FilterRoots(entries, []string{"vfat", "btrfs"})

	want := []string{"/", "/mnt/backup"}
	if !reflect.DeepEqual(roots, want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
}

func TestExcluded(t *testing.T) {
	for _, fstype := range []string{"proc", "sysfs", "tmpfs", "overlay", "squashfs", "nfs4", "cifs", "fuse.sshfs"} {
		if !Excluded(fstype) {
			t.Errorf("Excluded(%q) = false, want true", fstype)
		}
	}
	for _, fstype := range []string{"ext4", "btrfs", "xfs", "vfat", "f2fs"} {
		if Excluded(fstype) {
			t.Errorf("Excluded(%q) = true, want false", fstype)
		}
	}
}

func TestEstimateUsedBytes_SkipsFailedMounts(t *testing.T) {
	orig := statfs
	defer func() { statfs = orig }()

	statfs = func(path string) (uint64, error) {
		switch path {
		case "/good":
			return 1000, nil
		case "/bad":
			return 0, errors.New("statfs failed")
		default:
			return 500, nil
		}
	}

	total, failed := EstimateUsedBytes([]string{"/good", "/bad", "/also-good"}, nil)
	if total != 1500 {
		t.Fatalf("total = %d, want 1500", total)
	}
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
}
