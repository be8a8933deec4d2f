package eunix

type termiosFlag = uint64
