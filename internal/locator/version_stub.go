//go:build !windows

package locator

// Version resources are a Windows concept; elsewhere there is nothing to
// read.
func executableVersion(string) (string, bool) { return "", false }
