// options.go implements the key-value options store used for runtime
// settings such as the AI provider API key and the selected model.
package datastore

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gardenbase/seedvault/internal/errors"
)

// Well-known option names.
const (
	OptionAPIKey        = "gemini_api_key"
	OptionSelectedModel = "gemini_selected_model"
	OptionSchemaVersion = "schema_version"
)

// SchemaVersion is bumped when the persisted layout changes in a way
// migrations need to detect.
const SchemaVersion = "1"

// GetOption returns the stored value for name, or the empty string when
// the option is unset.
func (ds *DataStore) GetOption(name string) (string, error) {
	var option Option
	err := ds.DB.Where("name = ?", name).First(&option).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", classifyDBError(err, "get_option")
	}
	return option.Value, nil
}

// SetOption upserts one option row.
func (ds *DataStore) SetOption(name, value string) error {
	option := Option{Name: name, Value: value}
	err := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&option).Error
	if err != nil {
		return classifyDBError(err, "set_option")
	}
	return nil
}

// ensureSchemaVersion writes the schema-version marker on first open.
func (ds *DataStore) ensureSchemaVersion() error {
	current, err := ds.GetOption(OptionSchemaVersion)
	if err != nil {
		return err
	}
	if current == "" {
		return ds.SetOption(OptionSchemaVersion, SchemaVersion)
	}
	return nil
}
