// Package stream provides EMG sample sources: live hardware, synthetic
// signal for development, and file replay for regression work.
package stream

// Source produces raw EMG samples in fixed-size blocks. Read fills the
// provided block and blocks until enough samples are available; it returns
// io.EOF when the source is exhausted.
type Source interface {
	Open() error
	Read(block []float64) error
	Close() error
}
