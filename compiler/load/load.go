package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/relgen/schema"
)

// Definition is the file representation of a database. YAML and JSON
// documents share the same layout.
type Definition struct {
	Name   string      `yaml:"name"`
	Tables []*TableDef `yaml:"tables"`
}

// TableDef describes one table of a Definition.
type TableDef struct {
	Name        string           `yaml:"name"`
	Model       string           `yaml:"model,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Abstract    bool             `yaml:"abstract,omitempty"`
	ReadOnly    bool             `yaml:"read_only,omitempty"`
	AliasOf     string           `yaml:"alias_of,omitempty"`
	BulkLoad    bool             `yaml:"bulk_load,omitempty"`
	CrossRef    bool             `yaml:"cross_ref,omitempty"`
	Columns     []*ColumnDef     `yaml:"columns"`
	ForeignKeys []*ForeignKeyDef `yaml:"foreign_keys,omitempty"`
	Inheritance *InheritanceDef  `yaml:"inheritance,omitempty"`
}

// ColumnDef describes one column of a TableDef. Type accepts the names
// of schema.ParseType.
type ColumnDef struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Nullable   bool     `yaml:"nullable,omitempty"`
	PrimaryKey bool     `yaml:"primary_key,omitempty"`
	LazyLoad   bool     `yaml:"lazy_load,omitempty"`
	Values     []string `yaml:"values,omitempty"`
	Singular   string   `yaml:"singular,omitempty"`
}

// ForeignKeyDef describes a foreign key. Actions accept the names of
// schema.ParseAction.
type ForeignKeyDef struct {
	Name       string         `yaml:"name,omitempty"`
	RefName    string         `yaml:"ref_name,omitempty"`
	Table      string         `yaml:"table"`
	References []ReferenceDef `yaml:"references"`
	OnDelete   string         `yaml:"on_delete,omitempty"`
	OnUpdate   string         `yaml:"on_update,omitempty"`
}

// ReferenceDef pairs a local column with the referenced column.
type ReferenceDef struct {
	Local   string `yaml:"local"`
	Foreign string `yaml:"foreign"`
}

// InheritanceDef maps discriminator values to class names.
type InheritanceDef struct {
	Column  string            `yaml:"column"`
	Classes map[string]string `yaml:"classes"`
}

// File reads and resolves the definition file at path.
func File(path string) (*schema.Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read %s: %w", path, err)
	}
	db, err := Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return db, nil
}

// Bytes decodes and resolves a YAML or JSON definition. Unknown keys are
// rejected.
func Bytes(data []byte) (*schema.Database, error) {
	def, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return def.Database()
}

// Decode decodes a definition without resolving it.
func Decode(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	def := &Definition{}
	if err := dec.Decode(def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("load: empty definition")
		}
		return nil, fmt.Errorf("load: decode definition: %w", err)
	}
	return def, nil
}

// Database converts the definition to a resolved schema.Database.
func (d *Definition) Database() (*schema.Database, error) {
	var (
		errs   []error
		tables = make([]*schema.Table, 0, len(d.Tables))
	)
	for _, td := range d.Tables {
		t, err := td.table()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tables = append(tables, t)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return schema.NewDatabase(d.Name, tables...)
}

func (td *TableDef) table() (*schema.Table, error) {
	t := &schema.Table{
		Name:        td.Name,
		Model:       td.Model,
		Description: td.Description,
		Abstract:    td.Abstract,
		ReadOnly:    td.ReadOnly,
		AliasOf:     td.AliasOf,
		BulkLoad:    td.BulkLoad,
		CrossRef:    td.CrossRef,
	}
	var errs []error
	for _, cd := range td.Columns {
		typ, err := schema.ParseType(cd.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("table %q column %q: %w", td.Name, cd.Name, err))
			continue
		}
		t.Columns = append(t.Columns, &schema.Column{
			Name:       cd.Name,
			Type:       typ,
			Nullable:   cd.Nullable,
			PrimaryKey: cd.PrimaryKey,
			LazyLoad:   cd.LazyLoad,
			Values:     cd.Values,
			Singular:   cd.Singular,
		})
	}
	for _, fd := range td.ForeignKeys {
		fk := &schema.ForeignKey{
			Name:             fd.Name,
			RefName:          fd.RefName,
			ForeignTableName: fd.Table,
		}
		for _, r := range fd.References {
			fk.References = append(fk.References, schema.Reference{Local: r.Local, Foreign: r.Foreign})
		}
		var err error
		if fk.OnDelete, err = schema.ParseAction(fd.OnDelete); err != nil {
			errs = append(errs, fmt.Errorf("table %q foreign key to %q: %w", td.Name, fd.Table, err))
		}
		if fk.OnUpdate, err = schema.ParseAction(fd.OnUpdate); err != nil {
			errs = append(errs, fmt.Errorf("table %q foreign key to %q: %w", td.Name, fd.Table, err))
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	if i := td.Inheritance; i != nil {
		t.Inheritance = &schema.Inheritance{Column: i.Column, Classes: i.Classes}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return t, nil
}

// FromDatabase returns the definition of a resolved database.
func FromDatabase(db *schema.Database) *Definition {
	def := &Definition{Name: db.Name}
	for _, t := range db.Tables {
		td := &TableDef{
			Name:        t.Name,
			Model:       t.Model,
			Description: t.Description,
			Abstract:    t.Abstract,
			ReadOnly:    t.ReadOnly,
			AliasOf:     t.AliasOf,
			BulkLoad:    t.BulkLoad,
			CrossRef:    t.CrossRef,
		}
		for _, c := range t.Columns {
			td.Columns = append(td.Columns, &ColumnDef{
				Name:       c.Name,
				Type:       c.Type.String(),
				Nullable:   c.Nullable,
				PrimaryKey: c.PrimaryKey,
				LazyLoad:   c.LazyLoad,
				Values:     c.Values,
				Singular:   c.Singular,
			})
		}
		for _, fk := range t.ForeignKeys {
			fd := &ForeignKeyDef{
				Name:     fk.Name,
				RefName:  fk.RefName,
				Table:    fk.ForeignTableName,
				OnDelete: actionName(fk.OnDelete),
				OnUpdate: actionName(fk.OnUpdate),
			}
			for _, r := range fk.References {
				fd.References = append(fd.References, ReferenceDef{Local: r.Local, Foreign: r.Foreign})
			}
			td.ForeignKeys = append(td.ForeignKeys, fd)
		}
		if i := t.Inheritance; i != nil {
			td.Inheritance = &InheritanceDef{Column: i.Column, Classes: i.Classes}
		}
		def.Tables = append(def.Tables, td)
	}
	return def
}

// Marshal encodes the definition as YAML.
func (d *Definition) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("load: encode definition: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("load: encode definition: %w", err)
	}
	return buf.Bytes(), nil
}

func actionName(a schema.Action) string {
	if a == schema.ActionNone {
		return ""
	}
	return strings.ToLower(a.String())
}
