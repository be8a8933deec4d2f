package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"src.kesh.sh/pkg/must"
	"src.kesh.sh/pkg/testutil"
)

func openTemp(t *testing.T) *DB {
	db, err := Open(filepath.Join(testutil.TempDir(t), "db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCmd(t *testing.T) {
	db := openTemp(t)
	t0 := time.Unix(1700000000, 0)

	if seq := must.OK1(db.NextCmdSeq()); seq != 1 {
		t.Errorf("NextCmdSeq on empty db -> %d, want 1", seq)
	}
	for i, text := range []string{"echo a", "ls", "echo b"} {
		seq := must.OK1(db.AddCmd(text, t0.Add(time.Duration(i)*time.Second)))
		if seq != i+1 {
			t.Errorf("AddCmd -> seq %d, want %d", seq, i+1)
		}
	}

	cmds := must.OK1(db.Cmds(0, 100))
	want := []Cmd{
		{"echo a", 1, t0},
		{"ls", 2, t0.Add(time.Second)},
		{"echo b", 3, t0.Add(2 * time.Second)},
	}
	if diff := cmp.Diff(want, cmds); diff != "" {
		t.Errorf("Cmds (-want +got):\n%s", diff)
	}

	if cmd := must.OK1(db.PrevCmd(100, "echo")); cmd.Text != "echo b" {
		t.Errorf("PrevCmd(100, echo) -> %q", cmd.Text)
	}
	if cmd := must.OK1(db.PrevCmd(3, "echo")); cmd.Text != "echo a" {
		t.Errorf("PrevCmd(3, echo) -> %q", cmd.Text)
	}
	if _, err := db.PrevCmd(1, ""); err != ErrNoMatchingCmd {
		t.Errorf("PrevCmd(1) -> %v, want ErrNoMatchingCmd", err)
	}

	must.OK(db.DelCmd(2))
	if n := len(must.OK1(db.Cmds(0, 100))); n != 2 {
		t.Errorf("%d commands after DelCmd, want 2", n)
	}
	must.OK(db.ClearCmds())
	if n := len(must.OK1(db.Cmds(0, 100))); n != 0 {
		t.Errorf("%d commands after ClearCmds", n)
	}
	if seq := must.OK1(db.NextCmdSeq()); seq != 4 {
		t.Errorf("NextCmdSeq after ClearCmds -> %d, want 4", seq)
	}
}

func TestDir(t *testing.T) {
	db := openTemp(t)
	must.OK(db.AddDir("/a"))
	must.OK(db.AddDir("/b"))
	must.OK(db.AddDir("/b"))

	dirs := must.OK1(db.Dirs(nil))
	if len(dirs) != 2 || dirs[0].Path != "/b" || dirs[1].Path != "/a" {
		t.Errorf("Dirs -> %v", dirs)
	}
	dirs = must.OK1(db.Dirs(map[string]bool{"/b": true}))
	if len(dirs) != 1 || dirs[0].Path != "/a" {
		t.Errorf("Dirs with exclude -> %v", dirs)
	}
	must.OK(db.DelDir("/a"))
	if dirs := must.OK1(db.Dirs(nil)); len(dirs) != 1 {
		t.Errorf("Dirs after DelDir -> %v", dirs)
	}
}
