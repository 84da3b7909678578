// Package report renders and persists a pipeline.Result: a tablewriter
// summary table for the console, and a parquet file with one row per
// sample for offline analysis.
package report

import (
	"encoding/json"
	"io"

	"github.com/segmentio/parquet-go"
	"github.com/segmentio/parquet-go/compress/lz4"

	"github.com/ocupoint/linksim/pkg/pipeline"
)

// WaveformRow is one sample of one stage's waveform, the parquet schema a
// Result flattens into.
type WaveformRow struct {
	Stage string  `parquet:"stage,dict"`
	Index int64   `parquet:"index"`
	T     float64 `parquet:"t"`
	Y     float64 `parquet:"y"`
}

// NewParquetWriter creates a generic parquet writer with our schema,
// lz4-compressed, carrying the run's Config as JSON key/value metadata.
func NewParquetWriter(w io.Writer, cfg pipeline.Config) *parquet.GenericWriter[WaveformRow] {
	configStr := "{}"
	if b, err := json.Marshal(cfg); err == nil {
		configStr = string(b)
	}

	return parquet.NewGenericWriter[WaveformRow](w,
		parquet.Compression(&lz4.Codec{}),
		parquet.KeyValueMetadata("config", configStr),
	)
}

// WriteResult flattens every stage's (T, Y) waveform into rows and writes
// them to the parquet writer, then closes it.
func WriteResult(w io.Writer, result *pipeline.Result) error {
	pw := NewParquetWriter(w, result.Config)

	for _, stage := range result.Stages {
		rows := make([]WaveformRow, len(stage.T))
		for i := range stage.T {
			rows[i] = WaveformRow{Stage: stage.Name, Index: int64(i), T: stage.T[i], Y: stage.Y[i]}
		}
		if _, err := pw.Write(rows); err != nil {
			pw.Close()
			return err
		}
	}

	return pw.Close()
}
