package transport

import (
	"fmt"
	"io"
	"sync"
)

const readChunk = 4096

// Conn reads and writes framed packets over a byte stream.
type Conn struct {
	rw io.ReadWriter

	reader *Reader
	buf    []byte
	chunk  []byte

	wmu    sync.Mutex
	writer *Writer
}

func NewConn(rw io.ReadWriter, opts ...Opt) *Conn {
	return &Conn{
		rw:     rw,
		reader: NewReader(opts...),
		writer: NewWriter(opts...),
		chunk:  make([]byte, readChunk),
	}
}

// ReadPacket blocks until a whole frame has arrived and returns its payload.
// It must not be called concurrently.
func (c *Conn) ReadPacket() ([]byte, error) {
	for {
		payload, n, err := c.reader.Next(c.buf)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			c.buf = c.buf[n:]
			return payload, nil
		}

		read, err := c.rw.Read(c.chunk)
		if read > 0 {
			c.buf = append(c.buf, c.chunk[:read]...)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

// WritePacket frames payload and writes it. Safe for concurrent use.
func (c *Conn) WritePacket(payload []byte) error {
	frame, err := c.writer.Frame(payload)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := c.rw.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (c *Conn) Latency() float64 {
	return c.reader.Latency()
}

func (c *Conn) InboundThroughput() float64 {
	return c.reader.Throughput()
}

func (c *Conn) OutboundThroughput() float64 {
	return c.writer.Throughput()
}
