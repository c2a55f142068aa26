package datasets

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// snapshotVersion is incremented when the on-disk snapshot format changes.
const snapshotVersion = 1

// snapshotFormat is the on-disk representation of a dataset's entries and
// text encodings.
type snapshotFormat struct {
	Version   int
	Encoder   string
	Dimension int
	CreatedAt int64
	Entries   []Entry
	Texts     [][]float32
}

// SaveEncodings writes the entries and their text encodings to path with
// encoding/gob, so the dataset can be rebuilt by LoadSaliencyDataset without
// calling the encoder again.
func (d *SaliencyDataset) SaveEncodings(path string) error {
	snap := snapshotFormat{
		Version:   snapshotVersion,
		Encoder:   d.encoderName,
		Dimension: d.dim,
		CreatedAt: time.Now().Unix(),
		Entries:   d.entries,
		Texts:     d.texts,
	}
	err := writeFileAtomic(path, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(&snap)
	})
	if err != nil {
		return fmt.Errorf("save encodings: %w", err)
	}
	d.logger.Sugar().Infof("saved %d text encodings to %s", len(d.entries), path)
	return nil
}

// LoadSaliencyDataset rebuilds a dataset from a snapshot written by
// SaveEncodings. It validates the format version and that every encoding has
// the recorded dimension.
func LoadSaliencyDataset(path string, opts ...Option) (*SaliencyDataset, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer fh.Close()

	var snap snapshotFormat
	if err := gob.NewDecoder(fh).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot=%d expected=%d: %w", snap.Version, snapshotVersion, ErrSnapshotVersion)
	}
	if len(snap.Entries) != len(snap.Texts) {
		return nil, fmt.Errorf("snapshot size mismatch: entries=%d texts=%d", len(snap.Entries), len(snap.Texts))
	}
	for i, vec := range snap.Texts {
		if len(vec) != snap.Dimension {
			return nil, fmt.Errorf("snapshot entry %d: got %d values, expected %d: %w",
				i, len(vec), snap.Dimension, ErrDimension)
		}
	}

	d := newSaliencyDataset(snap.Entries, opts)
	d.texts = snap.Texts
	d.dim = snap.Dimension
	d.encoderName = snap.Encoder
	d.logger.Info("loaded text encodings from snapshot",
		zap.String("path", path),
		zap.String("encoder", d.encoderName),
		zap.Int("entries", len(d.entries)))
	return d, nil
}
