//go:build unix

package term

import (
	"fmt"
	"os"

	"src.kesh.sh/pkg/errutil"
	"src.kesh.sh/pkg/sys/eunix"
)

const (
	enableBracketedPaste  = "\033[?2004h"
	disableBracketedPaste = "\033[?2004l"
	// The writer places line breaks itself.
	disableAutoWrap = "\033[?7l"
	enableAutoWrap  = "\033[?7h"
)

// Setup sets up the terminal so that it is suitable for the line editor: raw
// mode for in, bracketed paste and no auto wrap for out. It returns a function
// that undoes all of it.
func Setup(in, out *os.File) (func() error, error) {
	restoreMode, err := eunix.SetupRaw(in)
	if err != nil {
		return nil, fmt.Errorf("cannot set up terminal: %w", err)
	}
	_, err = out.WriteString(enableBracketedPaste + disableAutoWrap)
	if err != nil {
		return nil, errutil.Multi(err, restoreMode())
	}
	return func() error {
		_, err := out.WriteString(disableBracketedPaste + enableAutoWrap)
		return errutil.Multi(err, restoreMode())
	}, nil
}
