package volume

import (
	"strings"
	"testing"
)

const sampleMountInfo = `22 1 8:2 / / rw,relatime shared:1 - ext4 /dev/sda2 rw
41 22 8:17 / /media/alice/KINGSTON rw,nosuid,nodev shared:30 - vfat /dev/sdb1 rw,fmask=0022
42 22 8:33 / /media/alice/MY\040DISK rw,nosuid shared:31 - exfat /dev/sdc1 rw
43 41 8:18 / /media/alice/KINGSTON rw shared:32 - vfat /dev/sdb2 rw
`

func TestFindMount(t *testing.T) {
	entry, err := findMount(strings.NewReader(sampleMountInfo), "/media/alice/KINGSTON/")
	if err != nil {
		t.Fatalf("findMount: %v", err)
	}
	if entry.Source != "/dev/sdb2" || entry.FSType != "vfat" {
		t.Fatalf("expected the stacked mount to win, got %+v", entry)
	}

	entry, err = findMount(strings.NewReader(sampleMountInfo), "/media/alice/MY DISK")
	if err != nil {
		t.Fatalf("findMount escaped: %v", err)
	}
	if entry.Source != "/dev/sdc1" {
		t.Fatalf("unexpected source %q", entry.Source)
	}

	if _, err := findMount(strings.NewReader(sampleMountInfo), "/media/alice/GONE"); err == nil {
		t.Fatal("expected error for missing mount")
	}
}

func TestParseMountInfoLineRejectsGarbage(t *testing.T) {
	if _, ok := parseMountInfoLine("not a mountinfo line"); ok {
		t.Fatal("expected rejection")
	}
}
