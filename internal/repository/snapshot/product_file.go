package snapshot

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guildsync/guildsync/internal/domain/models"
)

var productColumns = []string{
	"name", "metal", "date_added", "url", "rating", "edition",
	"authors", "artists", "pages", "price", "ratings_count",
}

const listSeparator = "; "

// ProductFile is a CSV backed product catalog. Each product is appended as
// soon as it is saved so an interrupted crawl keeps its progress.
type ProductFile struct {
	path string
}

// NewProductFile builds a ProductFile at path.
func NewProductFile(path string) *ProductFile {
	return &ProductFile{path: path}
}

// KnownURLs returns the product URLs already in the file.
func (f *ProductFile) KnownURLs(_ context.Context) (map[string]struct{}, error) {
	products, err := f.Products()
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.URL] = struct{}{}
	}
	return known, nil
}

// SaveProduct appends p, writing the header first for a new file.
func (f *ProductFile) SaveProduct(_ context.Context, p models.Product) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog dir %s: %w", dir, err)
		}
	}

	info, statErr := os.Stat(f.path)
	fresh := errors.Is(statErr, os.ErrNotExist) || (statErr == nil && info.Size() == 0)

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open catalog file %s: %w", f.path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if fresh {
		if err := w.Write(productColumns); err != nil {
			return fmt.Errorf("write catalog header: %w", err)
		}
	}
	if err := w.Write(encodeProduct(p)); err != nil {
		return fmt.Errorf("write product %s: %w", p.URL, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush product %s: %w", p.URL, err)
	}
	return nil
}

// Products reads every product in the file. A missing file is an empty catalog.
func (f *ProductFile) Products() ([]models.Product, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog file %s: %w", f.path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(productColumns)

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	var products []models.Product
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog file %s: %w", f.path, err)
		}
		products = append(products, decodeProduct(fields))
	}
	return products, nil
}

func encodeProduct(p models.Product) []string {
	dateAdded := ""
	if p.DateAdded != nil {
		dateAdded = p.DateAdded.Format(time.DateOnly)
	}
	return []string{
		p.Name,
		p.Metal,
		dateAdded,
		p.URL,
		optionalFloat(p.Rating),
		p.Edition,
		strings.Join(p.Authors, listSeparator),
		strings.Join(p.Artists, listSeparator),
		optionalInt(p.Pages),
		optionalFloat(p.Price),
		optionalInt(p.RatingsCount),
	}
}

// decodeProduct is lenient: unparsable optional values are left unset.
func decodeProduct(fields []string) models.Product {
	p := models.Product{
		Name:    fields[0],
		Metal:   fields[1],
		URL:     fields[3],
		Edition: fields[5],
		Authors: splitList(fields[6]),
		Artists: splitList(fields[7]),
	}
	if t, err := time.Parse(time.DateOnly, fields[2]); err == nil {
		p.DateAdded = &t
	}
	if v, err := strconv.ParseFloat(fields[4], 64); err == nil {
		p.Rating = &v
	}
	if v, err := strconv.Atoi(fields[8]); err == nil {
		p.Pages = &v
	}
	if v, err := strconv.ParseFloat(fields[9], 64); err == nil {
		p.Price = &v
	}
	if v, err := strconv.Atoi(fields[10]); err == nil {
		p.RatingsCount = &v
	}
	return p
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, listSeparator)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
