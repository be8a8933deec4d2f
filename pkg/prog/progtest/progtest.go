// Package progtest contains utilities for testing [prog.Program]
// implementations.
//
// A test is a list of cases, each describing an invocation of kesh and the
// expected outcome:
//
//	Test(t, shell.Program{},
//		ThatKesh("-c", "echo foo").WritesStdout("foo\n"),
//		ThatKesh("-c", "exit 3").ExitsWith(3),
//	)
package progtest

import (
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"src.kesh.sh/pkg/must"
	"src.kesh.sh/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitCode int
	stdout   output
	stderr   output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + strconv.Quote(o.content)
	}
	return strconv.Quote(o.content)
}

// ThatKesh returns a new Case with the specified CLI arguments, not including
// the program name.
//
// The new Case expects the program to exit with 0 and write nothing to stdout
// or stderr. Use the methods to change the expectations.
func ThatKesh(args ...string) Case {
	return Case{args: append([]string{"kesh"}, args...)}
}

// WithStdin returns an altered Case that feeds the given text to the stdin of
// the program.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark cases that exit with 0
// and write nothing.
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that expects the program to exit with
// the given code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that expects the program to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that expects the program to
// write text containing the given substring to stdout.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that expects the program to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that expects the program to
// write text containing the given substring to stderr.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(p, c.stdin, c.args...)
			if exit != c.want.exitCode {
				t.Errorf("got exit code %v, want %v", exit, c.want.exitCode)
			}
			if !matchOutput(stdout, c.want.stdout) {
				t.Errorf("got stdout %v, want %v", strconv.Quote(stdout), c.want.stdout)
			}
			if !matchOutput(stderr, c.want.stderr) {
				t.Errorf("got stderr %v, want %v", strconv.Quote(stderr), c.want.stderr)
			}
		})
	}
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}

// Run runs a program with the given stdin and arguments, including the
// program name. It returns the exit code and what the program wrote to stdout
// and stderr.
func Run(p prog.Program, stdin string, args ...string) (exit int, stdout, stderr string) {
	r0, w0 := must.Pipe()
	go func() {
		w0.WriteString(stdin)
		w0.Close()
	}()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	// Outputs are read concurrently so that a program writing more than a
	// pipe can buffer does not block.
	outCh := readAllAsync(r1)
	errCh := readAllAsync(r2)

	exit = prog.Run([3]*os.File{r0, w1, w2}, args, p)
	r0.Close()
	w1.Close()
	w2.Close()
	return exit, <-outCh, <-errCh
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.OK1(io.ReadAll(r)))
		r.Close()
	}()
	return ch
}
