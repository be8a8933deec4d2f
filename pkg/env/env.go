// Package env keeps names of environment variables with special significance
// to kesh, and the ordered variable store the evaluator works on.
package env

// Environment variables with special significance to kesh.
const (
	HOME            = "HOME"
	IFS             = "IFS"
	OLDPWD          = "OLDPWD"
	PATH            = "PATH"
	PS1             = "PS1"
	PS2             = "PS2"
	PWD             = "PWD"
	SHELL           = "SHELL"
	SHLVL           = "SHLVL"
	TERM            = "TERM"
	XDG_CONFIG_HOME = "XDG_CONFIG_HOME"
	XDG_STATE_HOME  = "XDG_STATE_HOME"
)
