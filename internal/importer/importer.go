package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"merchant-client/internal/domain"
	customersvc "merchant-client/internal/service/customer"
)

// CustomerCreator stores a customer for a merchant.
type CustomerCreator interface {
	Create(ctx context.Context, merchantID string, in customersvc.CreateInput) (*domain.Customer, error)
}

// Result summarises an import run.
type Result struct {
	Imported   int
	Duplicates int
}

// CSVImporter reads customer exports (full_name,business_name,email,phone)
// and creates the customers under one merchant.
type CSVImporter struct {
	reader     *csv.Reader
	customers  CustomerCreator
	merchantID string
}

func NewCSVImporter(r io.Reader, customers CustomerCreator, merchantID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		customers:  customers,
		merchantID: merchantID,
	}
}

// Run parses CSV rows and creates one customer per row. Customers whose
// email already exists are counted as duplicates and skipped.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["email"]; !ok {
		return res, errors.New("read headers: email column is required")
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		in, ok := parseRow(record, index)
		if !ok {
			continue
		}
		if _, err := i.customers.Create(ctx, i.merchantID, in); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				res.Duplicates++
				continue
			}
			return res, fmt.Errorf("line %d: create customer %q: %w", line, *in.Email, err)
		}
		res.Imported++
	}

	return res, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow maps a record onto CreateInput. Blank rows are skipped.
func parseRow(record []string, index map[string]int) (customersvc.CreateInput, bool) {
	var (
		in    customersvc.CreateInput
		blank = true
	)
	for _, col := range []struct {
		name string
		dst  **string
	}{
		{"full_name", &in.FullName},
		{"business_name", &in.BusinessName},
		{"email", &in.Email},
		{"phone", &in.Phone},
	} {
		if v := pick(record, index, col.name); v != "" {
			*col.dst = &v
			blank = false
		}
	}
	if in.Email == nil {
		empty := ""
		in.Email = &empty
	}
	return in, !blank
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
