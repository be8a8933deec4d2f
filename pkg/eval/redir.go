package eval

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"src.kesh.sh/pkg/job"
	"src.kesh.sh/pkg/parse"
)

var errClobber = errors.New("cannot overwrite existing file")

// Applies redirections to the ports of fm, left to right. It returns the
// files opened, which the caller closes after the command finishes. On
// error, the returned files should still be closed.
func (fm *Frame) redirect(rs []*parse.Redir) ([]*os.File, error) {
	var opened []*os.File
	for _, r := range rs {
		files, err := fm.redirectOne(r)
		opened = append(opened, files...)
		if err != nil {
			return opened, err
		}
	}
	return opened, nil
}

func defaultFd(op string) int {
	switch op {
	case "<", "<>", "<<", "<<-", "<<<", "<&":
		return 0
	}
	return 1
}

func (fm *Frame) setPort(fd int, f *os.File) {
	for len(fm.ports) <= fd {
		fm.ports = append(fm.ports, nil)
	}
	fm.ports[fd] = f
}

func (fm *Frame) redirectOne(r *parse.Redir) ([]*os.File, error) {
	fd := r.Fd
	if fd < 0 {
		fd = defaultFd(r.Op)
	}
	switch r.Op {
	case "<<", "<<-":
		body := r.Heredoc.Raw
		if !r.Heredoc.Quoted {
			var err error
			body, err = fm.expandString(r.Heredoc.Body)
			if err != nil {
				return nil, err
			}
		}
		return fm.feed(fd, body)
	}

	target, err := fm.expandString(r.Target)
	if err != nil {
		return nil, err
	}
	switch r.Op {
	case "<<<":
		return fm.feed(fd, target+"\n")
	case ">&", "<&":
		if target == "-" {
			fm.setPort(fd, nil)
			return nil, nil
		}
		if src, err := strconv.Atoi(target); err == nil {
			f := fm.file(src)
			if f == nil {
				return nil, &job.RedirectError{Target: target, Err: errors.New("bad file descriptor")}
			}
			fm.setPort(fd, f)
			return nil, nil
		}
		if r.Op == "<&" || r.Fd >= 0 {
			return nil, &job.RedirectError{Target: target, Err: errors.New("ambiguous redirect")}
		}
		// >&file sends both stdout and stderr to file.
		f, err := fm.open(target, ">")
		if err != nil {
			return nil, err
		}
		fm.setPort(1, f)
		fm.setPort(2, f)
		return []*os.File{f}, nil
	}
	f, err := fm.open(target, r.Op)
	if err != nil {
		return nil, err
	}
	fm.setPort(fd, f)
	return []*os.File{f}, nil
}

func (fm *Frame) open(target, op string) (*os.File, error) {
	path := fm.abs(target)
	var flag int
	switch op {
	case "<":
		flag = os.O_RDONLY
	case ">", ">|":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if op == ">" && fm.options().Noclobber {
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return nil, &job.RedirectError{Target: target, Err: errClobber}
			}
		}
	case ">>":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case "<>":
		flag = os.O_RDWR | os.O_CREATE
	default:
		return nil, &job.RedirectError{Target: target, Err: errors.New("unsupported redirection " + op)}
	}
	f, err := os.OpenFile(path, flag, 0666)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return nil, &job.RedirectError{Target: target, Err: err}
	}
	return f, nil
}

// Makes fd read from a pipe fed with text by a goroutine.
func (fm *Frame) feed(fd int, text string) ([]*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, &job.RedirectError{Err: err}
	}
	go func() {
		w.WriteString(text)
		w.Close()
	}()
	fm.setPort(fd, r)
	return []*os.File{r}, nil
}
