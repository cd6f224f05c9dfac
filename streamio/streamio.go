// Package streamio turns blocking readers into streams.
//
// The reader is consumed on the stream's producer goroutine. When the reader
// also implements io.Closer it is closed once the stream finishes, whether it
// reached EOF, failed or was dropped by its reader.
package streamio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/NetPo4ki/go-smoke/stream"
)

// DefaultChunkSize is the chunk size Chunks uses for a size of zero or less.
const DefaultChunkSize = 16 * 1024

// Chunks returns a stream of the bytes read from r, in chunks of at most
// size bytes. Each chunk is a fresh slice.
func Chunks(r io.Reader, size int) *stream.Stream[[]byte] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return stream.New(func(out *stream.Sender[[]byte]) (err error) {
		defer closeReader(r, &err)
		buf := make([]byte, size)
		for {
			n, rerr := r.Read(buf)
			if n > 0 {
				if err := out.Send(append([]byte(nil), buf[:n]...)); err != nil {
					return err
				}
			}
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			if rerr != nil {
				return fmt.Errorf("streamio: read: %w", rerr)
			}
		}
	})
}

// Lines returns a stream of the lines of r without their "\n" or "\r\n"
// terminators. Lines may be of any length. A final line without a
// terminator is still sent.
func Lines(r io.Reader) *stream.Stream[string] {
	return stream.New(func(out *stream.Sender[string]) (err error) {
		defer closeReader(r, &err)
		br := bufio.NewReader(r)
		for {
			line, rerr := br.ReadString('\n')
			if rerr != nil && !errors.Is(rerr, io.EOF) {
				return fmt.Errorf("streamio: read line: %w", rerr)
			}
			if line == "" && rerr != nil {
				return nil
			}
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if err := out.Send(line); err != nil {
				return err
			}
			if rerr != nil {
				return nil
			}
		}
	})
}

func closeReader(r io.Reader, err *error) {
	c, ok := r.(io.Closer)
	if !ok {
		return
	}
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("streamio: close: %w", cerr)
	}
}
