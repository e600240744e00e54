//go:build 386 || amd64

// Package cpu exposes the privileged x86 instructions used by the memory
// subsystem. All functions are implemented in assembly; calling them from
// user-mode faults, so packages that use them keep them behind swappable
// function variables.
package cpu

// Halt disables interrupts and stops instruction execution.
func Halt()

// FlushTLBEntry flushes the TLB entry for a particular virtual address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT loads the CR3 register with the physical address of a page
// directory, which also flushes all non-global TLB entries.
func SwitchPDT(pdtPhysAddr uintptr)
