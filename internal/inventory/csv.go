package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
)

// featureSeparator joins the feature list into a single CSV column.
const featureSeparator = "|"

var csvHeader = []string{"id", "name", "price", "stock", "category", "description", "features", "image"}

// ExportProducts writes the catalog as CSV, one product per row.
func ExportProducts(w io.Writer, products []backend.Product) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		row := []string{
			p.ID,
			p.Name,
			strconv.FormatInt(p.Price, 10),
			strconv.Itoa(p.Stock),
			p.Category,
			p.Description,
			strings.Join(p.Features, featureSeparator),
			p.Image,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ImportProducts reads product rows back from CSV. The header row is
// required; the id column is ignored since the backend assigns ids on create.
func ImportProducts(r io.Reader) ([]backend.ProductInput, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected csv header with %d columns", len(header))
	}

	var inputs []backend.ProductInput
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		price, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price %q", line, row[2])
		}
		stock, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid stock %q", line, row[3])
		}
		var feats []string
		if row[6] != "" {
			feats = strings.Split(row[6], featureSeparator)
		}
		inputs = append(inputs, backend.ProductInput{
			Name:        row[1],
			Price:       price,
			Stock:       stock,
			Category:    row[4],
			Description: row[5],
			Features:    feats,
			Image:       row[7],
		})
	}
	return inputs, nil
}
