package datum

import "io"

// Port is an input or output port, file- or string-backed, open or
// closed (spec §3 Port). The process-global port registry that owns
// opened ports until close lives in package port; Port itself only
// carries the handles and state a primitive needs to read/write/close.
type Port struct {
	ID      string
	IsInput bool
	IsFile  bool
	Closed  bool
	Name    string
	Reader  io.Reader
	Writer  io.Writer
	Closer  io.Closer
}

func (p *Port) Kind() Kind   { return KindPort }
func (p *Port) Hash() uint32 { return 0 }
func (p *Port) Write() string {
	kind := "output"
	if p.IsInput {
		kind = "input"
	}
	state := "open"
	if p.Closed {
		state = "closed"
	}
	return "#<" + state + "-" + kind + "-port" + portNameSuffix(p.Name) + ">"
}
func (p *Port) Display() string { return p.Write() }

func portNameSuffix(name string) string {
	if name == "" {
		return ""
	}
	return " " + name
}

// Close marks the port closed and releases its underlying handle.
func (p *Port) Close() error {
	if p.Closed {
		return nil
	}
	p.Closed = true
	if p.Closer != nil {
		return p.Closer.Close()
	}
	return nil
}
