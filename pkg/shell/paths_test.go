package shell

import (
	"testing"

	"src.kesh.sh/pkg/env"
	"src.kesh.sh/pkg/testutil"
	. "src.kesh.sh/pkg/tt"
)

func TestPaths(t *testing.T) {
	testutil.Setenv(t, env.HOME, "/home/u")
	testutil.Unsetenv(t, env.XDG_CONFIG_HOME)
	testutil.Unsetenv(t, env.XDG_STATE_HOME)
	Test(t, Fn("RCPath", RCPath), Table{
		Args().Rets("/home/u/.config/kesh/rc.yaml", nil),
	})
	Test(t, Fn("HistoryPath", HistoryPath), Table{
		Args().Rets("/home/u/.local/state/kesh/history", nil),
	})

	testutil.Setenv(t, env.XDG_CONFIG_HOME, "/xdg/config")
	testutil.Setenv(t, env.XDG_STATE_HOME, "relative/is/ignored")
	Test(t, Fn("RCPath", RCPath), Table{
		Args().Rets("/xdg/config/kesh/rc.yaml", nil),
	})
	Test(t, Fn("HistoryPath", HistoryPath), Table{
		Args().Rets("/home/u/.local/state/kesh/history", nil),
	})

	testutil.Unsetenv(t, env.HOME)
	Test(t, Fn("HistoryPath", HistoryPath), Table{
		Args().Rets("", errNoHome),
	})
}
