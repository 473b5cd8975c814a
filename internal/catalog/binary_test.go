package catalog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func writeStarCatalog(t *testing.T, count uint32, records []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(BinaryMagic)
	binary.Write(&buf, binary.LittleEndian, uint16(FormatVersion))
	binary.Write(&buf, binary.LittleEndian, count)
	buf.Write(records)
	return buf.Bytes()
}

func starRecord(number uint32, x, y, z float32, absMag int16, class uint16) []byte {
	rec := make([]byte, starRecordSize)
	binary.LittleEndian.PutUint32(rec[0:], number)
	binary.LittleEndian.PutUint32(rec[4:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(rec[8:], math.Float32bits(y))
	binary.LittleEndian.PutUint32(rec[12:], math.Float32bits(z))
	binary.LittleEndian.PutUint16(rec[16:], uint16(absMag))
	binary.LittleEndian.PutUint16(rec[18:], class)
	return rec
}

func TestReadStars(t *testing.T) {
	g2v := StellarClass{Kind: KindNormalStar, Class: ClassG, Subclass: 2, Luminosity: LumV}
	m5iii := StellarClass{Kind: KindNormalStar, Class: ClassM, Subclass: 5, Luminosity: LumIII}

	var records []byte
	records = append(records, starRecord(12345, 1.5, -2.5, 3.25, 1236, g2v.PackV1())...)
	records = append(records, starRecord(67890, -10, 20, -30, -1*256, m5iii.PackV1())...)
	records = append(records, starRecord(11111, 0, 0, 100, 2*256, g2v.PackV1())...)

	stars, err := ReadStars(bytes.NewReader(writeStarCatalog(t, 3, records)), NewDetailsCache())
	if err != nil {
		t.Fatalf("ReadStars: %v", err)
	}
	if len(stars) != 3 {
		t.Fatalf("got %d stars, want 3", len(stars))
	}

	if stars[0].Number() != 12345 {
		t.Errorf("star 0 number = %d, want 12345", stars[0].Number())
	}
	if pos := stars[0].Position(); pos != (Vec3{1.5, -2.5, 3.25}) {
		t.Errorf("star 0 position = %v", pos)
	}
	if mag := stars[0].AbsoluteMagnitude(); math.Abs(float64(mag-4.83)) > 0.01 {
		t.Errorf("star 0 magnitude = %f, want ~4.83", mag)
	}
	if st := stars[0].Details().SpectralType(); st != "G2V" {
		t.Errorf("star 0 spectral type = %q, want G2V", st)
	}

	// Stars with the same classification share one details record.
	if stars[0].Details() != stars[2].Details() {
		t.Error("stars with equal classification should share details")
	}
	if stars[0].Details() == stars[1].Details() {
		t.Error("stars with different classification must not share details")
	}
}

func TestReadStarsErrors(t *testing.T) {
	g2v := StellarClass{Kind: KindNormalStar, Class: ClassG, Subclass: 2, Luminosity: LumV}
	good := starRecord(1, 0, 0, 10, 1024, g2v.PackV1())

	tests := []struct {
		name      string
		data      []byte
		badHeader bool
	}{
		{
			name:      "wrong magic",
			data:      append([]byte("NOTSTARS\x00\x01"), 0, 0, 0, 0),
			badHeader: true,
		},
		{
			name: "wrong version",
			data: func() []byte {
				var buf bytes.Buffer
				buf.WriteString(BinaryMagic)
				binary.Write(&buf, binary.LittleEndian, uint16(0x0200))
				binary.Write(&buf, binary.LittleEndian, uint32(0))
				return buf.Bytes()
			}(),
			badHeader: true,
		},
		{
			name: "truncated record",
			data: writeStarCatalog(t, 2, append(append([]byte{}, good...), good[:10]...)),
		},
		{
			name: "bad spectral class",
			data: writeStarCatalog(t, 1, starRecord(1, 0, 0, 10, 1024, 0xFFFF)),
		},
		{
			name: "trailing data",
			data: append(writeStarCatalog(t, 1, good), 0xAB),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadStars(bytes.NewReader(tt.data), NewDetailsCache())
			if err == nil {
				t.Fatal("ReadStars succeeded, want error")
			}
			if tt.badHeader && !errors.Is(err, ErrBadHeader) {
				t.Errorf("error = %v, want ErrBadHeader", err)
			}
		})
	}
}

func writeCrossIndex(pairs ...uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(CrossIndexMagic)
	binary.Write(&buf, binary.LittleEndian, uint16(FormatVersion))
	for _, v := range pairs {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func TestReadCrossIndex(t *testing.T) {
	// Deliberately unsorted input; the loader must sort by secondary number.
	data := writeCrossIndex(
		48915, 32349, // HD 48915 -> HIP 32349 (Sirius)
		358, 677,
		172167, 91262,
	)

	xindex, err := ReadCrossIndex(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCrossIndex: %v", err)
	}
	if len(xindex) != 3 {
		t.Fatalf("got %d entries, want 3", len(xindex))
	}
	if xindex[0].Secondary != 358 {
		t.Errorf("first entry secondary = %d, want sorted order", xindex[0].Secondary)
	}

	tests := []struct {
		secondary uint32
		primary   uint32
		found     bool
	}{
		{48915, 32349, true},
		{358, 677, true},
		{172167, 91262, true},
		{99999, 0, false},
	}
	for _, tt := range tests {
		primary, ok := xindex.FindPrimary(CatalogNumber(tt.secondary))
		if ok != tt.found {
			t.Errorf("FindPrimary(%d) found = %v, want %v", tt.secondary, ok, tt.found)
			continue
		}
		if ok && primary != CatalogNumber(tt.primary) {
			t.Errorf("FindPrimary(%d) = %d, want %d", tt.secondary, primary, tt.primary)
		}
	}

	if sec, ok := xindex.FindSecondary(32349); !ok || sec != 48915 {
		t.Errorf("FindSecondary(32349) = %d, %v, want 48915, true", sec, ok)
	}
}

func TestReadCrossIndexEmpty(t *testing.T) {
	xindex, err := ReadCrossIndex(bytes.NewReader(writeCrossIndex()))
	if err != nil {
		t.Fatalf("ReadCrossIndex on empty table: %v", err)
	}
	if len(xindex) != 0 {
		t.Errorf("got %d entries, want 0", len(xindex))
	}
}

func TestReadCrossIndexTruncated(t *testing.T) {
	data := writeCrossIndex(48915, 32349)
	// Cut inside the second pair.
	data = append(data, 0x01, 0x02, 0x03)

	if _, err := ReadCrossIndex(bytes.NewReader(data)); err == nil {
		t.Fatal("ReadCrossIndex succeeded on mid-pair truncation, want error")
	}
}
