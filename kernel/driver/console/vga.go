// Package console drives the VGA text mode screen that the kernel uses for
// its log output.
package console

import (
	"unsafe"

	"xv6go/kernel/mem"
)

// Attr defines a color attribute.
type Attr uint8

// The set of attributes that can be passed to Write().
const (
	Black Attr = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGrey
	Grey
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	LightBrown
	White
)

// ScrollDir defines a scroll direction.
type ScrollDir uint8

// The supported list of scroll directions for the console Scroll() calls.
const (
	Up ScrollDir = iota
	Down
)

const (
	// TextBufferAddr is the physical address of the VGA text buffer. It lies
	// in the I/O hole below ExtMem which every kernel page table maps.
	TextBufferAddr = 0xb8000

	textWidth  = 80
	textHeight = 25

	clearChar = byte(' ')
)

// MakeAttr combines a foreground and a background color.
func MakeAttr(fg, bg Attr) Attr {
	return (bg << 4) | (fg & 0xf)
}

// Vga implements an 80x25 VGA-compatible text console.
type Vga struct {
	width  uint16
	height uint16

	fb []uint16
}

// Init sets up the console. Unless a buffer was already attached, the console
// writes to the kernel alias of the VGA text buffer.
func (cons *Vga) Init() {
	cons.width = textWidth
	cons.height = textHeight

	if cons.fb != nil {
		return
	}

	base := mem.P2V(mem.Phys(TextBufferAddr))
	cons.fb = unsafe.Slice(mem.PointerTo[uint16](base).Get(), textWidth*textHeight)
}

// Clear clears the specified rectangular region
func (cons *Vga) Clear(x, y, width, height uint16) {
	var (
		clr                  = uint16(MakeAttr(LightGrey, Black))<<8 | uint16(clearChar)
		rowOffset, colOffset uint16
	)

	// clip rectangle
	if x >= cons.width {
		x = cons.width
	}
	if y >= cons.height {
		y = cons.height
	}

	if x+width > cons.width {
		width = cons.width - x
	}
	if y+height > cons.height {
		height = cons.height - y
	}

	rowOffset = (y * cons.width) + x
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset = rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Dimensions returns the console width and height in characters.
func (cons *Vga) Dimensions() (uint16, uint16) {
	return cons.width, cons.height
}

// Scroll a particular number of lines to the specified direction.
func (cons *Vga) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines > cons.height {
		return
	}

	var i uint16
	offset := lines * cons.width

	switch dir {
	case Up:
		for ; i < (cons.height-lines)*cons.width; i++ {
			cons.fb[i] = cons.fb[i+offset]
		}
	case Down:
		for i = cons.height*cons.width - 1; i >= offset; i-- {
			cons.fb[i] = cons.fb[i-offset]
		}
	}
}

// Write a char to the specified location.
func (cons *Vga) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[(y*cons.width)+x] = (uint16(attr) << 8) | uint16(ch)
}
