package eop

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Parse reads EOP data in CSV form and returns the records in MJD
// order. The expected columns are
//
//	MJD,X,Y,DUT1,LOD,DPSI,DEPS,DX,DY
//
// with polar motion in arcseconds, DUT1/LOD in seconds and the four
// correction columns in milliarcseconds. Correction columns may be
// empty (predicted rows); they default to zero. A header row is
// tolerated. Malformed rows are skipped with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var recs []Record
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading EOP data: %w", err)
		}
		line++

		if len(row) < 5 {
			logger.Warn("skipping short EOP row", "line", line, "fields", len(row))
			continue
		}

		mjd, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			logger.Warn("skipping EOP row with invalid MJD", "line", line, "mjd", row[0])
			continue
		}

		rec := Record{MJD: mjd}
		ok := true
		required := []*float64{&rec.XP, &rec.YP, &rec.DUT1, &rec.LOD}
		for i, dst := range required {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				logger.Warn("skipping EOP row with invalid field", "line", line, "column", i+1)
				ok = false
				break
			}
			*dst = v
		}
		if !ok {
			continue
		}

		optional := []*float64{&rec.DPsi, &rec.DEps, &rec.DX, &rec.DY}
		for i, dst := range optional {
			col := i + 5
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				logger.Warn("ignoring invalid EOP correction field", "line", line, "column", col)
				continue
			}
			*dst = v
		}

		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no usable EOP records found")
	}
	return sortRecords(recs), nil
}
