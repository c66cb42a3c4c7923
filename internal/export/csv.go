// Package export renders seed catalog data to CSV for spreadsheet use.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/datastore"
	"github.com/gardenbase/seedvault/internal/errors"
)

// categoriesColumn is the extra export column carrying the resolved
// category names, comma-joined.
const categoriesColumn = "categories"

// utf8BOM makes Excel detect the encoding correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns resolves the export column list. A configured field list is
// filtered against the schema and keeps its configured order; an empty
// configuration exports every schema field. The categories column is
// always appended last.
func Columns(settings *conf.Settings) []string {
	var columns []string
	if len(settings.Export.Fields) > 0 {
		for _, field := range settings.Export.Fields {
			field = strings.TrimSpace(field)
			if _, ok := datastore.FieldSpecFor(field); ok {
				columns = append(columns, field)
			}
		}
	}
	if len(columns) == 0 {
		columns = datastore.FieldNames()
	}
	return append(columns, categoriesColumn)
}

// WriteCSV streams the filtered seed list as CSV, starting with a UTF-8
// byte order mark and a header row.
func WriteCSV(w io.Writer, ds datastore.Interface, settings *conf.Settings, filters *datastore.SeedFilters) error {
	seeds, err := ds.SearchSeeds(filters)
	if err != nil {
		return err
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return writeError(err)
	}

	cw := csv.NewWriter(w)
	columns := Columns(settings)

	if err := cw.Write(columns); err != nil {
		return writeError(err)
	}

	for i := range seeds {
		record := make([]string, len(columns))
		for j, column := range columns {
			if column == categoriesColumn {
				record[j] = joinCategories(&seeds[i])
				continue
			}
			record[j] = datastore.ExportValue(&seeds[i], column)
		}
		if err := cw.Write(record); err != nil {
			return writeError(err)
		}
	}

	cw.Flush()
	return writeError(cw.Error())
}

func joinCategories(seed *datastore.Seed) string {
	names := make([]string, 0, len(seed.Categories))
	for _, category := range seed.Categories {
		names = append(names, category.Name)
	}
	return strings.Join(names, ", ")
}

func writeError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(err).
		Component("export").
		Category(errors.CategoryFileIO).
		Build()
}
