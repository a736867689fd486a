package main

import (
	"reflect"
	"testing"
)

func TestResolveScanTarget(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		want    scanTarget
		wantErr bool
	}{
		{name: "no args scans all mounts", args: nil, want: scanTarget{}},
		{name: "existing path is local", args: []string{dir}, want: scanTarget{LocalPath: dir}},
		{name: "user at host is remote", args: []string{"alice@backup"},
			want: scanTarget{Remote: true, SSHDestination: "alice@backup", RemotePath: "."}},
		{name: "remote with path", args: []string{"alice@backup", "/srv"},
			want: scanTarget{Remote: true, SSHDestination: "alice@backup", RemotePath: "/srv"}},
		{name: "missing plain path still local", args: []string{"/no/such/dir"},
			want: scanTarget{LocalPath: "/no/such/dir"}},
		{name: "slash never remote", args: []string{"user@host/path"},
			want: scanTarget{LocalPath: "user@host/path"}},
		{name: "empty user rejected", args: []string{"@host"}, wantErr: true},
		{name: "too many local args", args: []string{dir, dir}, wantErr: true},
		{name: "too many remote args", args: []string{"a@b", "/x", "/y"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveScanTarget(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolveScanTarget(%v) expected error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveScanTarget(%v): %v", tt.args, err)
			}
			if got != tt.want {
				t.Fatalf("resolveScanTarget(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestSplitComma(t *testing.T) {
	got := splitComma(" nfs , , fuse.sshfs,")
	want := []string{"nfs", "fuse.sshfs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitComma = %v, want %v", got, want)
	}
	if splitComma("") != nil {
		t.Fatal("splitComma(\"\") should be nil")
	}
}
