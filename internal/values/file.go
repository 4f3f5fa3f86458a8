package values

import "strings"

// File is a handle to a mounted virtual file. The actual read/write
// implementation lives in the VM's file-mount layer, which owns the host
// filesystem interaction and the write-buffering/commit-on-close rule;
// this type only carries the state a VM method dispatch needs to enforce
// §4.6's mode and closed-handle checks.
type File struct {
	VirtualPath string
	Mode        string
	Writable    bool
	Closed      bool

	// ReadBuf holds the full content at open time for "r" mode; ReadPos
	// tracks how much of it readline()/readlines() has already consumed.
	ReadBuf  string
	ReadPos  int

	// WriteBuf accumulates write() calls; committed to the mount by the
	// VM on close().
	WriteBuf strings.Builder
}

func (f *File) Type() string { return "file" }
func (f *File) String() string {
	state := "open"
	if f.Closed {
		state = "closed"
	}
	return "<" + state + " file '" + f.VirtualPath + "', mode '" + f.Mode + "'>"
}

// ReadAll returns the unread remainder and advances the cursor to the end.
func (f *File) ReadAll() string {
	s := f.ReadBuf[f.ReadPos:]
	f.ReadPos = len(f.ReadBuf)
	return s
}

// ReadLine returns the next line, including its trailing newline if
// present, or "" at end of input.
func (f *File) ReadLine() string {
	if f.ReadPos >= len(f.ReadBuf) {
		return ""
	}
	rest := f.ReadBuf[f.ReadPos:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		line := rest[:idx+1]
		f.ReadPos += len(line)
		return line
	}
	f.ReadPos = len(f.ReadBuf)
	return rest
}

// ReadLines splits the unread remainder into newline-terminated chunks.
func (f *File) ReadLines() []string {
	var out []string
	for {
		line := f.ReadLine()
		if line == "" {
			break
		}
		out = append(out, line)
	}
	return out
}
