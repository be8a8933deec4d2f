//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package eunix

import (
	"os"

	"golang.org/x/sys/unix"
)

// Termios represents terminal attributes.
type Termios unix.Termios

// TermiosForFd returns the terminal attributes of the given file descriptor.
func TermiosForFd(fd int) (*Termios, error) {
	term, err := unix.IoctlGetTermios(fd, getAttrIOCTL)
	return (*Termios)(term), err
}

// ApplyToFd applies term to the given file descriptor.
func (term *Termios) ApplyToFd(fd int) error {
	return unix.IoctlSetTermios(fd, setAttrNowIOCTL, (*unix.Termios)(term))
}

// Copy returns a copy of term.
func (term *Termios) Copy() *Termios {
	v := *term
	return &v
}

func setFlag(flag *termiosFlag, mask termiosFlag, v bool) {
	if v {
		*flag |= mask
	} else {
		*flag &^= mask
	}
}

// SetRaw sets up term for reading keys one by one: canonical mode and echo
// are turned off, reads block until at least one byte is available, and CR
// is still translated to NL.
func (term *Termios) SetRaw() {
	setFlag(&term.Lflag, unix.ICANON|unix.ECHO, false)
	setFlag(&term.Iflag, unix.ICRNL, true)
	setFlag(&term.Iflag, unix.INLCR|unix.IGNCR, false)
	term.Cc[unix.VMIN] = 1
	term.Cc[unix.VTIME] = 0
}

// SetupRaw puts the terminal referred to by in into raw mode, returning a
// function that restores the saved attributes.
func SetupRaw(in *os.File) (func() error, error) {
	fd := int(in.Fd())
	saved, err := TermiosForFd(fd)
	if err != nil {
		return nil, err
	}
	raw := saved.Copy()
	raw.SetRaw()
	if err := raw.ApplyToFd(fd); err != nil {
		return nil, err
	}
	return func() error { return saved.ApplyToFd(fd) }, nil
}
