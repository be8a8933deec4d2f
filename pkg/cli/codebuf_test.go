package cli

import (
	"testing"

	"src.kesh.sh/pkg/tt"
)

func insertAtDot(c CodeBuffer, text string) CodeBuffer {
	c.InsertAtDot(text)
	return c
}

func replace(c CodeBuffer, from, to int, text string) CodeBuffer {
	c.Replace(from, to, text)
	return c
}

func TestCodeBuffer_InsertAtDot(t *testing.T) {
	tt.Test(t, tt.Fn("insertAtDot", insertAtDot), tt.Table{
		tt.Args(CodeBuffer{"", 0}, "ls").Rets(CodeBuffer{"ls", 2}),
		tt.Args(CodeBuffer{"echo", 2}, "xx").Rets(CodeBuffer{"ecxxho", 4}),
		tt.Args(CodeBuffer{"é", 2}, "ü").Rets(CodeBuffer{"éü", 4}),
	})
}

func TestCodeBuffer_Replace(t *testing.T) {
	tt.Test(t, tt.Fn("replace", replace), tt.Table{
		// Dot after the range shifts.
		tt.Args(CodeBuffer{"ls fo bar", 9}, 3, 5, "foo").Rets(CodeBuffer{"ls foo bar", 10}),
		// Dot before the range stays.
		tt.Args(CodeBuffer{"ls fo bar", 1}, 3, 5, "foo").Rets(CodeBuffer{"ls foo bar", 1}),
		// Dot inside the range moves after the replacement.
		tt.Args(CodeBuffer{"ls fo bar", 4}, 3, 5, "foo").Rets(CodeBuffer{"ls foo bar", 6}),
		tt.Args(CodeBuffer{"ls foo", 6}, 3, 6, "").Rets(CodeBuffer{"ls ", 3}),
	})
}

func positionFn(f func(*CodeBuffer, int) int) func(string, int) int {
	return func(s string, i int) int {
		c := &CodeBuffer{s, i}
		return f(c, i)
	}
}

func TestCodeBuffer_Positions(t *testing.T) {
	tt.Test(t, tt.Fn("runeLeft", positionFn((*CodeBuffer).runeLeft)), tt.Table{
		tt.Args("aé", 3).Rets(1),
		tt.Args("aé", 0).Rets(0),
	})
	tt.Test(t, tt.Fn("runeRight", positionFn((*CodeBuffer).runeRight)), tt.Table{
		tt.Args("éa", 0).Rets(2),
		tt.Args("éa", 3).Rets(3),
	})
	tt.Test(t, tt.Fn("lineStart", positionFn((*CodeBuffer).lineStart)), tt.Table{
		tt.Args("if x\nthen", 7).Rets(5),
		tt.Args("if x\nthen", 3).Rets(0),
	})
	tt.Test(t, tt.Fn("lineEnd", positionFn((*CodeBuffer).lineEnd)), tt.Table{
		tt.Args("if x\nthen", 1).Rets(4),
		tt.Args("if x\nthen", 6).Rets(9),
	})
	tt.Test(t, tt.Fn("wordLeft", positionFn((*CodeBuffer).wordLeft)), tt.Table{
		tt.Args("echo foo-bar  ", 14).Rets(5),
		tt.Args("echo foo", 5).Rets(0),
		tt.Args("echo", 0).Rets(0),
	})
}

func TestCodeBuffer_WordRight(t *testing.T) {
	wordRight := func(s string, i int, punc bool) int {
		c := &CodeBuffer{s, i}
		return c.wordRight(i, punc)
	}
	tt.Test(t, tt.Fn("wordRight", wordRight), tt.Table{
		tt.Args("echo foo-bar x", 0, false).Rets(5),
		tt.Args("echo foo-bar x", 5, false).Rets(13),
		tt.Args("echo foo-bar x", 5, true).Rets(8),
		tt.Args("echo foo-bar x", 8, true).Rets(9),
		tt.Args("echo", 4, false).Rets(4),
	})
}

func TestCodeBuffer_Find(t *testing.T) {
	find := func(s string, i int, r rune, n int) int {
		c := &CodeBuffer{s, i}
		return c.find(i, r, n)
	}
	tt.Test(t, tt.Fn("find", find), tt.Table{
		tt.Args("a/b/c", 0, '/', 1).Rets(1),
		tt.Args("a/b/c", 0, '/', 2).Rets(3),
		tt.Args("a/b/c", 1, '/', 1).Rets(3),
		tt.Args("a/b/c", 0, 'x', 1).Rets(-1),
		// Only on the current line.
		tt.Args("a\nb/", 0, '/', 1).Rets(-1),
	})
}
