package load

import (
	"errors"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"

	"github.com/syssam/relgen/schema"
)

// AtlasOption configures the conversion of an inspected schema.
type AtlasOption func(*atlasConfig)

type atlasConfig struct {
	name       string
	binaryUUID map[string]bool
	crossRef   map[string]bool
	readOnly   map[string]bool
}

// WithDatabaseName overrides the database name, which defaults to the
// name of the inspected schema.
func WithDatabaseName(name string) AtlasOption {
	return func(c *atlasConfig) { c.name = name }
}

// WithBinaryUUID marks binary columns, given as "table.column", holding
// UUIDs in their 16 byte form.
func WithBinaryUUID(columns ...string) AtlasOption {
	return func(c *atlasConfig) { mark(c.binaryUUID, columns) }
}

// WithCrossRef marks tables as cross-reference tables of many-to-many
// relations.
func WithCrossRef(tables ...string) AtlasOption {
	return func(c *atlasConfig) { mark(c.crossRef, tables) }
}

// WithReadOnly marks tables as read-only.
func WithReadOnly(tables ...string) AtlasOption {
	return func(c *atlasConfig) { mark(c.readOnly, tables) }
}

func mark(m map[string]bool, keys []string) {
	for _, k := range keys {
		m[k] = true
	}
}

// FromAtlas converts a schema inspected by atlas to a resolved
// schema.Database. Tables keep the inspection order.
func FromAtlas(s *atlas.Schema, opts ...AtlasOption) (*schema.Database, error) {
	if s == nil {
		return nil, errors.New("load: nil atlas schema")
	}
	cfg := &atlasConfig{
		name:       s.Name,
		binaryUUID: make(map[string]bool),
		crossRef:   make(map[string]bool),
		readOnly:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	var errs []error
	tables := make([]*schema.Table, 0, len(s.Tables))
	for _, at := range s.Tables {
		t, err := cfg.table(at)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tables = append(tables, t)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return schema.NewDatabase(cfg.name, tables...)
}

func (c *atlasConfig) table(at *atlas.Table) (*schema.Table, error) {
	t := &schema.Table{
		Name:     at.Name,
		ReadOnly: c.readOnly[at.Name],
		CrossRef: c.crossRef[at.Name],
	}
	for _, a := range at.Attrs {
		if cm, ok := a.(*atlas.Comment); ok {
			t.Description = cm.Text
		}
	}
	pk := make(map[string]bool)
	if at.PrimaryKey != nil {
		for _, p := range at.PrimaryKey.Parts {
			if p.C != nil {
				pk[p.C.Name] = true
			}
		}
	}
	for _, ac := range at.Columns {
		col := &schema.Column{
			Name:       ac.Name,
			PrimaryKey: pk[ac.Name],
		}
		if ac.Type != nil {
			col.Nullable = ac.Type.Null
			col.Type, col.Values = c.columnType(at.Name+"."+ac.Name, ac.Type.Type)
		}
		t.Columns = append(t.Columns, col)
	}
	var errs []error
	for _, afk := range at.ForeignKeys {
		fk, err := foreignKey(afk)
		if err != nil {
			errs = append(errs, fmt.Errorf("table %q: %w", at.Name, err))
			continue
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// columnType maps an atlas column type to a column type and its
// declared values.
func (c *atlasConfig) columnType(key string, t atlas.Type) (schema.Type, []string) {
	switch t := t.(type) {
	case *atlas.IntegerType:
		return schema.TypeInteger, nil
	case *atlas.BoolType:
		return schema.TypeBoolean, nil
	case *atlas.FloatType:
		return schema.TypeFloat, nil
	case *atlas.DecimalType:
		return schema.TypeDecimal, nil
	case *atlas.StringType:
		if strings.Contains(strings.ToLower(t.T), "text") {
			return schema.TypeText, nil
		}
		return schema.TypeString, nil
	case *atlas.TimeType:
		switch tt := strings.ToLower(t.T); {
		case tt == "date":
			return schema.TypeDate, nil
		case strings.HasPrefix(tt, "time") && !strings.HasPrefix(tt, "timestamp"):
			return schema.TypeTime, nil
		default:
			return schema.TypeTimestamp, nil
		}
	case *atlas.EnumType:
		return schema.TypeEnum, t.Values
	case *mysql.SetType:
		return schema.TypeSet, t.Values
	case *postgres.ArrayType:
		return schema.TypeArray, nil
	case *atlas.JSONType:
		return schema.TypeJSON, nil
	case *atlas.UUIDType:
		return schema.TypeUUID, nil
	case *atlas.BinaryType:
		if c.binaryUUID[key] {
			return schema.TypeUUIDBinary, nil
		}
		return schema.TypeBinary, nil
	default:
		return schema.TypeOther, nil
	}
}

func foreignKey(afk *atlas.ForeignKey) (*schema.ForeignKey, error) {
	if afk.RefTable == nil {
		return nil, fmt.Errorf("foreign key %q: missing referenced table", afk.Symbol)
	}
	if len(afk.Columns) != len(afk.RefColumns) {
		return nil, fmt.Errorf("foreign key %q: %d columns reference %d columns", afk.Symbol, len(afk.Columns), len(afk.RefColumns))
	}
	fk := &schema.ForeignKey{ForeignTableName: afk.RefTable.Name}
	for i, col := range afk.Columns {
		fk.References = append(fk.References, schema.Reference{Local: col.Name, Foreign: afk.RefColumns[i].Name})
	}
	var err error
	if fk.OnDelete, err = schema.ParseAction(string(afk.OnDelete)); err != nil {
		return nil, fmt.Errorf("foreign key %q: %w", afk.Symbol, err)
	}
	if fk.OnUpdate, err = schema.ParseAction(string(afk.OnUpdate)); err != nil {
		return nil, fmt.Errorf("foreign key %q: %w", afk.Symbol, err)
	}
	return fk, nil
}
