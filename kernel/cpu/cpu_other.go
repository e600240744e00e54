//go:build !386 && !amd64

// Package cpu exposes the privileged x86 instructions used by the memory
// subsystem. On non-x86 hosts the package only exists so that the rest of the
// tree compiles for hosted tests; every function panics.
package cpu

// Halt panics on non-x86 hosts.
func Halt() { panic("cpu: Halt requires an x86 target") }

// FlushTLBEntry panics on non-x86 hosts.
func FlushTLBEntry(uintptr) { panic("cpu: FlushTLBEntry requires an x86 target") }

// SwitchPDT panics on non-x86 hosts.
func SwitchPDT(uintptr) { panic("cpu: SwitchPDT requires an x86 target") }
