package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/query"
	"github.com/shopspring/decimal"
)

// columnAliases maps accepted header names to bar fields.
var columnAliases = map[string]string{
	"pair":        "pair",
	"symbol":      "pair",
	"timestamp":   "timestamp",
	"time":        "timestamp",
	"date":        "timestamp",
	"open":        "open",
	"open_price":  "open",
	"high":        "high",
	"high_price":  "high",
	"low":         "low",
	"low_price":   "low",
	"close":       "close",
	"close_price": "close",
	"volume":      "volume",
}

// barReader reads price bars from CSV with a header row.
type barReader struct {
	reader      *csv.Reader
	columns     map[string]int
	defaultPair string
	line        int
}

func newBarReader(input io.Reader, defaultPair string) (*barReader, error) {
	reader := csv.NewReader(input)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()

	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}

	columns := map[string]int{}

	for i, name := range header {
		if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			columns[field] = i
		}
	}

	if _, ok := columns["timestamp"]; !ok {
		return nil, errors.New("header has no timestamp column")
	}

	if _, ok := columns["pair"]; !ok && defaultPair == "" {
		return nil, errors.New("header has no pair column and no -pair was given")
	}

	return &barReader{reader: reader, columns: columns, defaultPair: defaultPair, line: 1}, nil
}

// Next returns the next bar, or io.EOF at the end of the input.
func (reader *barReader) Next() (model.PriceBarInput, error) {
	record, err := reader.reader.Read()
	reader.line += 1

	var parseErr *csv.ParseError

	if errors.As(err, &parseErr) {
		return model.PriceBarInput{}, reader.wrap(err)
	}

	if err != nil {
		return model.PriceBarInput{}, err
	}

	value := func(field string) string {
		if i, ok := reader.columns[field]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}

		return ""
	}

	input := model.PriceBarInput{Pair: value("pair")}

	if input.Pair == "" {
		input.Pair = reader.defaultPair
	}

	if unix, ok := unixTimestamp(value("timestamp")); ok {
		input.Timestamp = unix
	} else if input.Timestamp, err = query.ParseTime("timestamp", value("timestamp")); err != nil {
		return input, reader.wrap(err)
	}

	prices := []struct {
		field string
		ptr   *decimal.NullDecimal
	}{
		{"open", &input.Open},
		{"high", &input.High},
		{"low", &input.Low},
		{"close", &input.Close},
	}

	for _, price := range prices {
		text := value(price.field)

		if text == "" {
			continue
		}

		parsed, err := decimal.NewFromString(text)

		if err != nil {
			return input, reader.wrap(fmt.Errorf("invalid %s price %q", price.field, text))
		}

		*price.ptr = decimal.NewNullDecimal(parsed)
	}

	if text := value("volume"); text != "" {
		volume, err := strconv.ParseInt(text, 10, 64)

		if err != nil {
			return input, reader.wrap(fmt.Errorf("invalid volume %q", text))
		}

		input.Volume = &volume
	}

	return input, nil
}

// wrap marks a bad row, which is skipped rather than ending the import.
func (reader *barReader) wrap(err error) error {
	return apperr.Wrap(apperr.Validation, fmt.Sprintf("line %d", reader.line), err)
}

// unixTimestamp accepts whole seconds since the epoch as used by some exports.
func unixTimestamp(value string) (time.Time, bool) {
	seconds, err := strconv.ParseInt(value, 10, 64)

	if err != nil {
		return time.Time{}, false
	}

	return time.Unix(seconds, 0).UTC(), true
}
