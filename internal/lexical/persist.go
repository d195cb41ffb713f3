package lexical

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"finrag-orchestrator/internal/domain"

	"github.com/klauspost/compress/zstd"
)

// File layout: 4 magic bytes, uint32 format version, then a zstd-compressed
// gob stream holding the snapshot. Everything the index needs (parameters,
// term statistics, positional metadata) travels as one unit so a partial
// write can never produce a loadable but misaligned file.
var fileMagic = [4]byte{'F', 'K', 'W', 'I'}

const fileVersion uint32 = 1

type recordSnapshot struct {
	TermFreq   map[string]int
	Length     int
	Document   string
	ChunkIndex int
	PageNumber *int
}

type indexSnapshot struct {
	K1          float64
	B           float64
	TotalLength int64
	Count       int
	Records     []recordSnapshot
}

// Save writes the index to path atomically: the snapshot goes to a temp file
// in the same directory and is renamed into place only after a successful
// flush.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := idx.writeTo(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

func (idx *Index) writeTo(f *os.File) error {
	if _, err := f.Write(fileMagic[:]); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, fileVersion); err != nil {
		return fmt.Errorf("failed to write index version: %w", err)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	snap := indexSnapshot{
		K1:          idx.k1,
		B:           idx.b,
		TotalLength: idx.totalLength,
		Count:       len(idx.records),
		Records:     make([]recordSnapshot, 0, len(idx.records)),
	}
	for i := range idx.records {
		r := idx.records[i]
		snap.Records = append(snap.Records, recordSnapshot{
			TermFreq:   r.termFreq,
			Length:     r.length,
			Document:   r.ref.Document,
			ChunkIndex: r.ref.ChunkIndex,
			PageNumber: r.ref.PageNumber,
		})
	}

	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush compressed index: %w", err)
	}
	return nil
}

// Load reads an index written by Save. Header, version, and record-count
// mismatches fail with domain.ErrIndexCorrupt rather than producing a
// misaligned index.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := f.Read(magic[:]); err != nil {
		return nil, fmt.Errorf("%w: unreadable header", domain.ErrIndexCorrupt)
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("%w: bad magic %q", domain.ErrIndexCorrupt, magic)
	}
	var version uint32
	if err := binary.Read(f, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: unreadable version", domain.ErrIndexCorrupt)
	}
	if version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrIndexCorrupt, version)
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	defer zr.Close()

	var snap indexSnapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	if snap.Count != len(snap.Records) {
		return nil, fmt.Errorf("%w: corpus length %d does not match metadata length %d",
			domain.ErrIndexCorrupt, snap.Count, len(snap.Records))
	}
	if snap.Count == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	idx := &Index{
		k1:          snap.K1,
		b:           snap.B,
		totalLength: snap.TotalLength,
		records:     make([]record, 0, snap.Count),
		docFreq:     make(map[string]int),
	}
	for _, rs := range snap.Records {
		for t := range rs.TermFreq {
			idx.docFreq[t]++
		}
		idx.records = append(idx.records, record{
			termFreq: rs.TermFreq,
			length:   rs.Length,
			ref: domain.ChunkRef{
				Document:   rs.Document,
				ChunkIndex: rs.ChunkIndex,
				PageNumber: rs.PageNumber,
			},
		})
	}

	return idx, nil
}
