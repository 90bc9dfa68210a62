//go:build windows

package console

import (
	"fmt"
	"syscall"
	"unsafe"
)

// SetTitle sets the console window title
func SetTitle(title string) error {
	lib, err := syscall.LoadLibrary("kernel32.dll")
	if err != nil {
		return err
	}
	defer syscall.FreeLibrary(lib)

	proc, err := syscall.GetProcAddress(lib, "SetConsoleTitleW")
	if err != nil {
		return err
	}

	titlePtr, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return err
	}

	r1, _, err := syscall.Syscall(proc, 1, uintptr(unsafe.Pointer(titlePtr)), 0, 0)
	if r1 == 0 {
		return fmt.Errorf("SetConsoleTitle failed: %v", err)
	}

	return nil
}

// GetWindow returns the console window handle (HWND)
func GetWindow() uintptr {
	lib, err := syscall.LoadLibrary("kernel32.dll")
	if err != nil {
		return 0
	}
	defer syscall.FreeLibrary(lib)

	proc, err := syscall.GetProcAddress(lib, "GetConsoleWindow")
	if err != nil {
		return 0
	}

	hwnd, _, _ := syscall.Syscall(proc, 0, 0, 0, 0)
	return hwnd
}
