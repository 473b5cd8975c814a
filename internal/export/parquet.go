package export

import (
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/nightsky-software/stardb-go/internal/catalog"
)

// StarWriter writes star records to a Parquet file in batches.
type StarWriter struct {
	file      *os.File
	writer    *pqarrow.FileWriter
	builder   *array.RecordBuilder
	batchSize int
	count     int
	total     int64
}

// NewStarWriter creates a Parquet star writer.
func NewStarWriter(path string, batchSize int) (*StarWriter, error) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "number", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "x", Type: arrow.PrimitiveTypes.Float32, Nullable: false},
		{Name: "y", Type: arrow.PrimitiveTypes.Float32, Nullable: false},
		{Name: "z", Type: arrow.PrimitiveTypes.Float32, Nullable: false},
		{Name: "abs_mag", Type: arrow.PrimitiveTypes.Float32, Nullable: false},
		{Name: "spectral_type", Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithDictionaryDefault(false),
	)

	writer, err := pqarrow.NewFileWriter(schema, f, writerProps, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return nil, err
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)

	return &StarWriter{
		file:      f,
		writer:    writer,
		builder:   builder,
		batchSize: batchSize,
	}, nil
}

// Write appends one star record.
func (w *StarWriter) Write(s *catalog.Star, name string) error {
	pos := s.Position()
	var spectral string
	if d := s.Details(); d != nil {
		spectral = d.SpectralType()
	}

	w.builder.Field(0).(*array.Int64Builder).Append(int64(s.Number()))
	w.builder.Field(1).(*array.StringBuilder).Append(name)
	w.builder.Field(2).(*array.Float32Builder).Append(pos.X)
	w.builder.Field(3).(*array.Float32Builder).Append(pos.Y)
	w.builder.Field(4).(*array.Float32Builder).Append(pos.Z)
	w.builder.Field(5).(*array.Float32Builder).Append(s.AbsoluteMagnitude())
	w.builder.Field(6).(*array.StringBuilder).Append(spectral)

	w.count++
	w.total++
	if w.count >= w.batchSize {
		return w.flush()
	}
	return nil
}

// Total returns the number of records written so far.
func (w *StarWriter) Total() int64 {
	return w.total
}

func (w *StarWriter) flush() error {
	if w.count == 0 {
		return nil
	}
	rec := w.builder.NewRecord()
	defer rec.Release()
	err := w.writer.Write(rec)
	w.count = 0
	return err
}

// Close flushes the final batch and closes the file.
func (w *StarWriter) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.writer.Close(); err != nil {
		return err
	}
	return w.file.Close()
}
