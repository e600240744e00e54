//go:build unix

// Command kmemsim runs the kernel memory bring-up inside a regular process.
// Physical memory is an anonymous host mapping; the kernel page table is
// built and verified but never loaded into the MMU.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"xv6go/kernel/kfmt"
	"xv6go/kernel/kmain"
	"xv6go/kernel/mem"
	"xv6go/kernel/mem/hostmem"
	"xv6go/kernel/mem/pmm"
	"xv6go/kernel/mem/vmm"
)

type config struct {
	physTop   uint64
	kernelEnd uint64
	data      uint64
	drain     bool
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[kmemsim] error: %s\n", err.Error())
	os.Exit(1)
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("kmemsim", flag.ContinueOnError)
	fs.Uint64Var(&cfg.physTop, "phystop", mem.DefaultPhysTop, "top of physical memory in bytes")
	fs.Uint64Var(&cfg.kernelEnd, "kernel-end", 0x80106000, "virtual address of the end of the kernel image")
	fs.Uint64Var(&cfg.data, "data", 0x80105000, "virtual address of the kernel data segment")
	fs.BoolVar(&cfg.drain, "drain", false, "allocate every free page after bring-up and report the count")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	switch {
	case cfg.physTop > mem.DevSpace-mem.KernBase:
		return cfg, fmt.Errorf("phystop 0x%x overlaps the device window", cfg.physTop)
	case cfg.kernelEnd > 0xffffffff || cfg.data > 0xffffffff:
		return cfg, errors.New("kernel-end and data must be 32-bit addresses")
	}

	return cfg, nil
}

func (cfg config) layout() (mem.Layout, error) {
	data, ok := mem.Realign[mem.PageAligned](mem.Virt(uint32(cfg.data)))
	if !ok {
		return mem.Layout{}, fmt.Errorf("data address 0x%x is not page-aligned", cfg.data)
	}

	return mem.Layout{
		KernelEnd: mem.Virt(uint32(cfg.kernelEnd)),
		Data:      data,
		PhysTop:   mem.PageRoundDown(mem.Phys(uint32(cfg.physTop))),
	}, nil
}

func run(cfg config, w io.Writer) error {
	layout, err := cfg.layout()
	if err != nil {
		return err
	}

	arena, err := hostmem.New(mem.Size(layout.PhysTop.Raw()))
	if err != nil {
		return err
	}
	arena.Install()
	defer arena.Close()

	kfmt.SetOutputSink(w)
	defer kfmt.SetOutputSink(nil)

	if kerr := kmain.Bringup(layout, vmm.Setup); kerr != nil {
		return kerr
	}
	vmm.PrintKernelMap(w)

	if cfg.drain {
		var drained uint32
		for {
			if _, kerr := pmm.Alloc(); kerr != nil {
				break
			}
			drained++
		}
		kfmt.Fprintf(w, "[kmemsim] drained %d pages\n", drained)
	}

	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		exit(err)
	}

	if err = run(cfg, os.Stdout); err != nil {
		exit(err)
	}
}
