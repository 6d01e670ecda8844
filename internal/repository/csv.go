package repository

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	apperr "github.com/darkodi/shortstore/internal/errors"
	"github.com/darkodi/shortstore/internal/model"
)

// maxLineSize bounds a single record. Longer lines are skipped, not fatal.
const maxLineSize = 1 << 20

// EncodeCSV writes the header and one line per mapping, in order. Fields
// holding a comma or a double quote are quoted with inner quotes doubled.
func EncodeCSV(w io.Writer, urls []model.URL) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.CSVHeader); err != nil {
		return err
	}
	for _, u := range urls {
		record := []string{
			u.ShortCode,
			u.OriginalURL,
			strconv.FormatUint(u.ID, 10),
			u.Timestamp(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads a mapping document. Each physical line is one record, so
// a broken line never swallows its neighbours. Malformed lines are reported
// to warn as *errors.RowError and skipped; only read failures abort.
func DecodeCSV(r io.Reader, warn func(error)) ([]model.URL, error) {
	if warn == nil {
		warn = func(error) {}
	}

	br := bufio.NewReaderSize(r, 64*1024)

	var urls []model.URL
	lineNum := 0
	sawFirst := false
	for {
		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lineNum++

		if tooLong {
			sawFirst = true
			warn(&apperr.RowError{Line: lineNum, Reason: fmt.Sprintf("line exceeds %d bytes", maxLineSize)})
			continue
		}

		line := strings.TrimSuffix(raw, "\r")
		if line == "" {
			continue
		}

		record, err := splitLine(line)
		if err != nil {
			sawFirst = true
			warn(&apperr.RowError{Line: lineNum, Reason: "malformed csv", Err: err})
			continue
		}

		if !sawFirst {
			sawFirst = true
			if slices.Equal(record, model.CSVHeader) {
				continue
			}
			warn(fmt.Errorf("line %d: missing header, reading it as data", lineNum))
		}

		u, rowErr := parseRecord(record)
		if rowErr != nil {
			rowErr.Line = lineNum
			warn(rowErr)
			continue
		}
		urls = append(urls, u)
	}

	return urls, nil
}

// readLine returns the next line without its terminator. A line longer than
// maxLineSize is consumed to its end and reported as tooLong with no content.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func splitLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	return cr.Read()
}

func parseRecord(record []string) (model.URL, *apperr.RowError) {
	if len(record) != len(model.CSVHeader) {
		return model.URL{}, &apperr.RowError{
			Reason: fmt.Sprintf("expected %d fields, got %d", len(model.CSVHeader), len(record)),
		}
	}

	code, longURL, rawID, rawCreated := record[0], record[1], record[2], record[3]
	if code == "" {
		return model.URL{}, &apperr.RowError{Reason: "empty code"}
	}
	if longURL == "" {
		return model.URL{}, &apperr.RowError{Reason: "empty url"}
	}

	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return model.URL{}, &apperr.RowError{Reason: "bad id", Err: err}
	}
	if id == 0 {
		return model.URL{}, &apperr.RowError{Reason: "id must be positive"}
	}

	createdAt, err := parseTimestamp(rawCreated)
	if err != nil {
		return model.URL{}, &apperr.RowError{Reason: "bad createdAt", Err: err}
	}

	return model.URL{
		ID:          id,
		ShortCode:   code,
		OriginalURL: longURL,
		CreatedAt:   createdAt,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(model.TimeLayout, s, time.Local)
}
