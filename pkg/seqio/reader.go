package seqio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Reader streams Records out of a FASTQ file (plain or gzip-compressed).
// It satisfies the FastqReader contract the worker pipeline is built
// against: New/Read/BytesRead.
type Reader struct {
	br          *bufio.Reader
	closer      io.Closer
	interleaved bool
	phred64     bool
	mateIdx     int
	bytesRead   int64
}

// NewReader opens path and wraps it for FASTQ record streaming.
//
// interleaved marks the file as holding alternating R1/R2 reads so each
// Record can be tagged with its mate index; phred64 shifts quality bytes
// from the legacy Phred+64 encoding down to Phred+33 on read; bufSize sets
// the underlying bufio.Reader buffer size (0 selects a sane default).
func NewReader(path string, interleaved, phred64 bool, bufSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fastq %q: %w", path, err)
	}

	var rc io.Reader = f
	var closer io.Closer = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip fastq %q: %w", path, err)
		}
		rc = gz
		closer = gzReadCloser{gz, f}
	}

	if bufSize <= 0 {
		bufSize = 1 << 20 // 1MiB, matches the teacher's "fastqBufferSize" tuning knob
	}

	return &Reader{
		br:          bufio.NewReaderSize(rc, bufSize),
		closer:      closer,
		interleaved: interleaved,
		phred64:     phred64,
	}, nil
}

type gzReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g gzReadCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.closer.Close()
}

// BytesRead reports the cumulative count of raw bytes consumed so far.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead
}

// Read returns the next record, or io.EOF once the stream is exhausted.
// A truncated final record (fewer than 4 lines remaining) is reported as
// io.ErrUnexpectedEOF rather than silently dropped.
func (r *Reader) Read() (*Record, error) {
	nameLine, err := r.readLine()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if len(nameLine) == 0 || nameLine[0] != '@' {
		return nil, fmt.Errorf("fastq: expected '@' record header, got %q", nameLine)
	}

	seqLine, err := r.readLine()
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	plusLine, err := r.readLine()
	if err != nil || len(plusLine) == 0 || plusLine[0] != '+' {
		return nil, io.ErrUnexpectedEOF
	}
	qualLine, err := r.readLine()
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}

	name := append([]byte(nil), bytes.TrimSpace(nameLine[1:])...)
	seq := append([]byte(nil), bytes.TrimSpace(seqLine)...)
	qual := append([]byte(nil), bytes.TrimSpace(qualLine)...)

	if r.phred64 {
		for i, q := range qual {
			shifted := int(q) - 31
			if shifted < 33 {
				shifted = 33
			}
			qual[i] = byte(shifted)
		}
	}

	rec := &Record{Name: name, Seq: seq, Qual: qual}
	if r.interleaved {
		rec.Index = []byte{byte('0' + r.mateIdx)}
		r.mateIdx = 1 - r.mateIdx
	}
	return rec, nil
}

func (r *Reader) readLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	r.bytesRead += int64(len(line))
	if len(line) == 0 && err != nil {
		return nil, err
	}
	return line, nil
}
