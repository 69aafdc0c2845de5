package scoretable

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CSV column names.
const (
	ColumnArea  = "area_name_en"
	ColumnZone  = "zone_index"
	ColumnRooms = "rooms_en"
	ColumnScore = "weighted_score"
)

// ParseCSV reads score rows from a CSV with a header line. Columns other than
// the four known ones (such as an unnamed index column) are ignored. Zone
// indexes may be written as floats ("2.0") but must be integral.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidCSV)
		}
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidCSV, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidCSV, line, err)
		}
		row, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidCSV, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columns struct{ area, zone, rooms, score int }

func columnIndex(header []string) (columns, error) {
	idx := columns{-1, -1, -1, -1}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColumnArea:
			idx.area = i
		case ColumnZone:
			idx.zone = i
		case ColumnRooms:
			idx.rooms = i
		case ColumnScore:
			idx.score = i
		}
	}
	var missing []string
	for name, i := range map[string]int{ColumnArea: idx.area, ColumnZone: idx.zone, ColumnRooms: idx.rooms, ColumnScore: idx.score} {
		if i < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return idx, fmt.Errorf("%w: missing columns %s", ErrInvalidCSV, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(rec []string, idx columns) (Row, error) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	zoneF, err := strconv.ParseFloat(field(idx.zone), 64)
	if err != nil || zoneF != math.Trunc(zoneF) || math.IsInf(zoneF, 0) {
		return Row{}, fmt.Errorf("zone_index %q is not an integer", field(idx.zone))
	}
	score, err := strconv.ParseFloat(field(idx.score), 64)
	if err != nil {
		return Row{}, fmt.Errorf("weighted_score %q is not a number", field(idx.score))
	}
	return Row{
		Key:   NewKey(field(idx.area), int(zoneF), field(idx.rooms)),
		Score: score,
	}, nil
}

// CSVSource reads rows from a CSV document produced by open.
type CSVSource struct {
	open func(ctx context.Context) (io.ReadCloser, error)
}

// NewCSVSource returns a Source backed by a CSV opener, typically an artifact fetch.
func NewCSVSource(open func(ctx context.Context) (io.ReadCloser, error)) *CSVSource {
	return &CSVSource{open: open}
}

// Rows implements Source.
func (s *CSVSource) Rows(ctx context.Context) ([]Row, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseCSV(rc)
}
