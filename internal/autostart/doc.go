// Package autostart registers copycat to launch at user login.
//
// On Windows the entry is a value under the current user's Run registry key.
// Elsewhere it is an XDG autostart desktop entry. Install overwrites an
// existing entry and Uninstall tolerates a missing one.
package autostart
