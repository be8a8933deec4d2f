package eunix

import "golang.org/x/sys/unix"

type termiosFlag = uint32

const (
	getAttrIOCTL    = unix.TCGETS
	setAttrNowIOCTL = unix.TCSETS
)
