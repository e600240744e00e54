package main

import "xv6go/kernel/kmain"

// kernelEnd and dataStart are filled in by the rt0 code from the linker's
// end and data symbols before main runs.
var kernelEnd, dataStart uintptr

// main makes a dummy call to the actual kernel main entrypoint function. It
// is intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code.
//
// Global variables are passed as arguments to Kmain to prevent the compiler
// from inlining the actual call and removing Kmain from the generated .o file.
func main() {
	kmain.Kmain(kernelEnd, dataStart)
}
