package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/webswing/internal/dynamo"
)

// CSVHeader names the trajectory columns.
var CSVHeader = []string{"time", "x", "y", "vx", "vy"}

// WriteCSV writes tr with a header row, at full float precision.
func WriteCSV(w io.Writer, tr *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	row := make([]string, len(CSVHeader))
	for i := 0; i < tr.Len(); i++ {
		row = row[:1]
		row[0] = strconv.FormatFloat(tr.Times[i], 'g', -1, 64)
		for _, val := range tr.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a trajectory written by WriteCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return dynamo.NewTrajectory(0), nil
	}

	tr := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", i+2, j+1, err)
			}
			vals[j] = v
		}
		if !tr.Append(vals[0], dynamo.State(vals[1:])) {
			return nil, fmt.Errorf("line %d: time %g does not increase", i+2, vals[0])
		}
	}
	return tr, nil
}

// ExportData is the JSON export of one run.
type ExportData struct {
	Metadata RunMetadata `json:"metadata"`
	Steps    int         `json:"steps"`
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
}

// ExportJSON writes meta and tr as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, tr *dynamo.Trajectory) error {
	data := ExportData{
		Metadata: meta,
		Steps:    tr.Len(),
		Times:    tr.Times,
		States:   make([][]float64, tr.Len()),
	}
	for i, s := range tr.States {
		data.States[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
