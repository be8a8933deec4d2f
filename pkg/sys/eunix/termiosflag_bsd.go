//go:build dragonfly || freebsd || netbsd || openbsd

package eunix

type termiosFlag = uint32
