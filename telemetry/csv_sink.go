// File: telemetry/csv_sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Append-only CSV sink producing one "time,temp" row per telemetry tick.

package telemetry

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/momentics/thermostress/api"
)

// Header is the first row of every telemetry file.
var Header = []string{"time", "temp"}

// PathFor derives the telemetry file of a run from its mode label.
func PathFor(dir string, mode api.ExecutionMode) string {
	return filepath.Join(dir, "stress_"+string(mode)+".csv")
}

// CSVSink writes samples as CSV. The temp column holds the aggregated reading.
type CSVSink struct {
	mu     sync.Mutex
	w      *csv.Writer
	file   *os.File
	closer io.Closer
	agg    api.Aggregation
	sync   bool
	closed bool
}

var _ api.SampleSink = (*CSVSink)(nil)

// CreateCSV truncates path, writes the header and returns a sink that fsyncs
// on every Flush when syncWrites is set.
func CreateCSV(path string, agg api.Aggregation, syncWrites bool) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, api.Wrap(api.ErrCodeLogWriteFailure, "create telemetry dir", err).WithContext("path", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeLogWriteFailure, "create telemetry file", err).WithContext("path", path)
	}
	s := &CSVSink{w: csv.NewWriter(f), file: f, closer: f, agg: agg, sync: syncWrites}
	if err := s.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// NewCSVSink writes to an arbitrary writer. If w is an io.Closer, Close closes it.
func NewCSVSink(w io.Writer, agg api.Aggregation) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w), agg: agg}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	if err := s.writeHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVSink) writeHeader() error {
	if err := s.w.Write(Header); err != nil {
		return api.Wrap(api.ErrCodeLogWriteFailure, "write header", err)
	}
	return s.flushLocked()
}

// Append buffers one row.
func (s *CSVSink) Append(sample api.ThermalSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return api.NewError(api.ErrCodeLogWriteFailure, "sink closed")
	}
	row := []string{
		strconv.FormatFloat(sample.Elapsed.Seconds(), 'f', -1, 64),
		strconv.FormatFloat(sample.Value(s.agg), 'f', -1, 64),
	}
	if err := s.w.Write(row); err != nil {
		return api.Wrap(api.ErrCodeLogWriteFailure, "write row", err)
	}
	return nil
}

// Flush pushes buffered rows to the writer and, for files, to stable storage.
func (s *CSVSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *CSVSink) flushLocked() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return api.Wrap(api.ErrCodeLogWriteFailure, "flush rows", err)
	}
	if s.sync && s.file != nil {
		if err := s.file.Sync(); err != nil {
			return api.Wrap(api.ErrCodeLogWriteFailure, "sync telemetry file", err)
		}
	}
	return nil
}

// Close flushes and releases the underlying writer. Repeated calls are no-ops.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.flushLocked()
	if s.closer != nil {
		if cerr := s.closer.Close(); cerr != nil && err == nil {
			err = api.Wrap(api.ErrCodeLogWriteFailure, "close telemetry file", cerr)
		}
	}
	return err
}
