package catalog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
)

const (
	// BinaryMagic is the 8-byte header of binary star catalog files.
	BinaryMagic = "CELSTARS"
	// CrossIndexMagic is the 8-byte header of cross-index files.
	CrossIndexMagic = "CELINDEX"
	// FormatVersion is the only supported version for both formats.
	FormatVersion = 0x0100

	starRecordSize = 20 // uint32 id + 3*float32 pos + int16 mag + uint16 class
)

// ErrBadHeader is returned when a catalog stream has the wrong magic or an
// unsupported version. The stream position is undefined afterwards and the
// caller should discard the load.
var ErrBadHeader = errors.New("bad catalog header")

func readHeader(r io.Reader, magic string) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if string(header) != magic {
		return fmt.Errorf("%w: magic %q", ErrBadHeader, header)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: version 0x%04x", ErrBadHeader, version)
	}
	return nil
}

// ReadStars reads a complete binary star catalog from r. Every record must
// decode, including its packed spectral class; a single bad record fails the
// whole read, so a partial catalog is never returned. Shared details records
// are obtained from the cache, deduplicated by classification.
func ReadStars(r io.Reader, details *DetailsCache) ([]*Star, error) {
	if err := readHeader(r, BinaryMagic); err != nil {
		return nil, err
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: star count: %v", ErrBadHeader, err)
	}

	stars := make([]*Star, 0, count)
	rec := make([]byte, starRecordSize)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("truncated star record %d: %w", i, err)
		}

		number := CatalogNumber(binary.LittleEndian.Uint32(rec[0:]))
		x := math.Float32frombits(binary.LittleEndian.Uint32(rec[4:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(rec[8:]))
		z := math.Float32frombits(binary.LittleEndian.Uint32(rec[12:]))
		absMag := int16(binary.LittleEndian.Uint16(rec[16:]))
		packedClass := binary.LittleEndian.Uint16(rec[18:])

		d, err := details.FromPacked(packedClass)
		if err != nil {
			return nil, fmt.Errorf("star record %d: %w", i, err)
		}

		star := &Star{}
		star.SetNumber(number)
		star.SetPosition(Vec3{x, y, z})
		star.SetAbsoluteMagnitude(float32(absMag) / 256.0)
		star.SetDetails(d)
		stars = append(stars, star)
	}

	// The record count is authoritative; trailing bytes mean a corrupt file.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("trailing data after %d star records", count)
	}

	return stars, nil
}

// ReadCrossIndex reads a cross-index file from r: header, then
// (secondary number, primary identity) pairs until end of stream. End of
// stream at a pair boundary is success; truncation inside a pair is an
// error. The result is sorted by secondary number.
func ReadCrossIndex(r io.Reader) (CrossIndex, error) {
	if err := readHeader(r, CrossIndexMagic); err != nil {
		return nil, err
	}

	var xindex CrossIndex
	rec := make([]byte, 8)
	for record := 0; ; record++ {
		_, err := io.ReadFull(r, rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("truncated cross index record %d: %w", record, err)
		}

		xindex = append(xindex, CrossIndexEntry{
			Secondary: CatalogNumber(binary.LittleEndian.Uint32(rec[0:])),
			Primary:   CatalogNumber(binary.LittleEndian.Uint32(rec[4:])),
		})
	}

	xindex.sort()
	return xindex, nil
}

// MappedFile is a read-only memory-mapped catalog file. Mapping avoids
// double-buffering multi-hundred-megabyte star catalogs through the page
// cache and a userspace copy.
type MappedFile struct {
	f    *os.File
	data mmap.MMap
}

// OpenMapped memory-maps the file at path for reading.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap catalog file: %w", err)
	}

	return &MappedFile{f: f, data: data}, nil
}

// Reader returns a fresh reader over the mapped bytes.
func (m *MappedFile) Reader() *bytes.Reader {
	return bytes.NewReader(m.data)
}

// Close unmaps and closes the file.
func (m *MappedFile) Close() error {
	if err := m.data.Unmap(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}
