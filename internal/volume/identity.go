package volume

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IdentityPrefix starts every device identity string.
const IdentityPrefix = "USB_"

// Identifier derives device identities from volume serial numbers.
type Identifier struct {
	serial func(mountPath string) (uint32, error)
	now    func() time.Time
}

// NewIdentifier returns an Identifier backed by the platform serial query.
func NewIdentifier() *Identifier {
	return &Identifier{serial: readSerial, now: time.Now}
}

// NewIdentifierWith builds an Identifier from explicit serial and clock sources.
// Nil arguments fall back to the platform defaults.
func NewIdentifierWith(serial func(string) (uint32, error), now func() time.Time) *Identifier {
	id := NewIdentifier()
	if serial != nil {
		id.serial = serial
	}
	if now != nil {
		id.now = now
	}
	return id
}

// Identify returns the device identity for the volume mounted at mountPath.
func (i *Identifier) Identify(mountPath string) string {
	id, _ := i.Resolve(mountPath)
	return id
}

// Resolve returns the device identity together with the serial lookup error
// when the fallback identity had to be used.
//
// The fallback embeds the current unix time and is therefore different on
// every call. Volumes without a readable serial are never deduplicated
// across ticks.
func (i *Identifier) Resolve(mountPath string) (string, error) {
	serial, err := i.serial(mountPath)
	if err == nil {
		return FormatSerial(serial), nil
	}
	return FallbackIdentity(mountPath, i.now()), err
}

// FormatSerial renders a volume serial as a device identity.
func FormatSerial(serial uint32) string {
	return fmt.Sprintf("%s%08X", IdentityPrefix, serial)
}

// FallbackIdentity is the identity used when no serial can be read.
func FallbackIdentity(mountPath string, now time.Time) string {
	return IdentityPrefix + mountPath + "_" + strconv.FormatInt(now.Unix(), 10)
}

// IsStable reports whether id was derived from a hardware serial.
func IsStable(id string) bool {
	rest, ok := strings.CutPrefix(id, IdentityPrefix)
	if !ok || len(rest) != 8 {
		return false
	}
	_, err := strconv.ParseUint(rest, 16, 32)
	return err == nil
}

// parseFSUUID converts a filesystem UUID into a 32-bit volume serial.
//
// FAT and exFAT report "XXXX-XXXX", which is the serial itself. NTFS reports
// 16 hex digits; Windows exposes the low 32 bits of that value as the serial.
func parseFSUUID(uuid string) (uint32, bool) {
	uuid = strings.TrimSpace(uuid)
	switch {
	case len(uuid) == 9 && uuid[4] == '-':
		v, err := strconv.ParseUint(uuid[:4]+uuid[5:], 16, 32)
		if err != nil {
			return 0, false
		}
		return uint32(v), true
	case len(uuid) == 16:
		v, err := strconv.ParseUint(uuid, 16, 64)
		if err != nil {
			return 0, false
		}
		return uint32(v), true
	}
	return 0, false
}
