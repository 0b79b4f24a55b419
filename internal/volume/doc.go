// Package volume enumerates mounted removable volumes and derives the device
// identity used to deduplicate them.
//
// Identities have the form USB_XXXXXXXX where the hex digits are the 32-bit
// volume serial. When no serial is available the identity embeds the mount
// path and the current unix time instead; such identities are unstable and
// callers must expect them to differ between polls.
//
// Failures are reported as *Error values whose Kind (enumeration, permission,
// not_found, unsupported) lets callers decide whether to degrade or skip.
package volume
