package fsutil

import (
	"errors"
	"io/fs"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/testutil"
	"src.kesh.sh/pkg/tt"
)

func TestTildeAbbr(t *testing.T) {
	tt.Test(t, tt.Fn("TildeAbbr", TildeAbbr), tt.Table{
		tt.Args("/home/u", "/home/u").Rets("~"),
		tt.Args("/home/u/src", "/home/u").Rets("~/src"),
		tt.Args("/home/u/src", "/home/u/").Rets("~/src"),
		tt.Args("/home/user", "/home/u").Rets("/home/user"),
		tt.Args("/tmp", "/").Rets("/tmp"),
		tt.Args("/tmp", "").Rets("/tmp"),
	})
}

func TestSplitPath(t *testing.T) {
	tt.Test(t, tt.Fn("SplitPath", SplitPath), tt.Table{
		tt.Args("").Rets([]string(nil)),
		tt.Args("/bin:/usr/bin").Rets([]string{"/bin", "/usr/bin"}),
		tt.Args("/bin::").Rets([]string{"/bin", ".", "."}),
	})
}

func setupBin(t *testing.T) string {
	dir := testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{
		"bin1": testutil.Dir{
			"tool":  testutil.File{Perm: 0755, Content: ""},
			"plain": "",
			"dir":   testutil.Dir{},
		},
		"bin2": testutil.Dir{
			"plain": testutil.File{Perm: 0755, Content: ""},
			"other": testutil.File{Perm: 0755, Content: ""},
		},
		"noexec": testutil.Dir{
			"data": "",
		},
	})
	return dir
}

func TestLookPath(t *testing.T) {
	dir := setupBin(t)
	path := dir + "/bin1:" + dir + "/bin2"

	tt.Test(t, tt.Fn("LookPath", LookPath), tt.Table{
		tt.Args("tool", path).Rets(dir+"/bin1/tool", nil),
		tt.Args("plain", path).Rets(dir+"/bin2/plain", nil),
		tt.Args("missing", path).Rets("", ErrNotFound),
		tt.Args("./bin1/tool", "").Rets("./bin1/tool", nil),
	})

	_, err := LookPath("data", dir+"/noexec")
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("LookPath of non-executable -> %v, want permission error", err)
	}
	_, err = LookPath("./noexec/data", "")
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("LookPath of non-executable path -> %v, want permission error", err)
	}
}

func TestEachExternal(t *testing.T) {
	dir := setupBin(t)
	var names []string
	EachExternal(dir+"/bin1:"+dir+"/bin2:"+dir+"/nonexistent", func(name string) {
		names = append(names, name)
	})
	sort.Strings(names)
	if diff := cmp.Diff([]string{"other", "plain", "tool"}, names); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
