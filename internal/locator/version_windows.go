//go:build windows

package locator

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// executableVersion reads the fixed file-version block out of the
// executable's version resource.
func executableVersion(path string) (string, bool) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil || size == 0 {
		return "", false
	}
	block := make([]byte, size)
	if err := windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&block[0])); err != nil {
		return "", false
	}
	var fixed *windows.VS_FIXEDFILEINFO
	var fixedLen uint32
	if err := windows.VerQueryValue(unsafe.Pointer(&block[0]), `\`, unsafe.Pointer(&fixed), &fixedLen); err != nil {
		return "", false
	}
	if fixed == nil || fixedLen == 0 {
		return "", false
	}
	return fmt.Sprintf("%d.%d.%d.%d",
		fixed.FileVersionMS>>16, fixed.FileVersionMS&0xffff,
		fixed.FileVersionLS>>16, fixed.FileVersionLS&0xffff), true
}
