package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/schema"
)

func TestFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		db, err := File(filepath.Join("testdata", "shop.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "shop", db.Name)
		require.Len(t, db.Tables, 3)

		customers := db.Table("customers")
		require.NotNil(t, customers)
		assert.Equal(t, "Customer", customers.Model)
		assert.Equal(t, "People placing orders.", customers.Description)
		assert.Equal(t, schema.TypeString, customers.Column("name").Type)

		orders := db.Table("orders")
		require.NotNil(t, orders)
		assert.Equal(t, schema.TypeInteger, orders.Column("id").Type)
		assert.Equal(t, []string{"new", "paid", "shipped"}, orders.Column("status").Values)
		flags := orders.Column("flags")
		assert.Equal(t, schema.TypeSet, flags.Type)
		assert.Equal(t, "flag", flags.Singular)
		assert.True(t, flags.Nullable)
		assert.True(t, orders.Column("note").LazyLoad)
		require.Len(t, orders.ForeignKeys, 1)
		assert.Equal(t, schema.ActionCascade, orders.ForeignKeys[0].OnDelete)
		assert.Same(t, customers, orders.ForeignKeys[0].ForeignTable())

		vehicles := db.Table("vehicles")
		require.NotNil(t, vehicles.Inheritance)
		assert.Equal(t, "Truck", vehicles.Inheritance.Classes["truck"])
	})

	t.Run("json", func(t *testing.T) {
		db, err := File(filepath.Join("testdata", "shop.json"))
		require.NoError(t, err)
		require.Len(t, db.Tables, 2)
		assert.False(t, db.Table("settings").HasPrimaryKey())
		assert.True(t, db.Table("currencies").BulkLoad)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := File(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
		invalid bool
	}{
		{
			name:    "empty",
			data:    "",
			wantErr: "empty definition",
		},
		{
			name:    "unknown key",
			data:    "name: shop\nowner: me\n",
			wantErr: "field owner not found",
		},
		{
			name:    "unknown type",
			data:    "name: shop\ntables:\n  - name: t\n    columns:\n      - {name: c, type: money}\n",
			wantErr: `unknown column type "money"`,
		},
		{
			name:    "unknown action",
			data:    "name: shop\ntables:\n  - name: a\n    columns: [{name: id, type: int}]\n  - name: b\n    columns: [{name: a_id, type: int}]\n    foreign_keys:\n      - table: a\n        references: [{local: a_id, foreign: id}]\n        on_delete: explode\n",
			wantErr: `unknown referential action "explode"`,
		},
		{
			name:    "unresolved foreign key",
			data:    "name: shop\ntables:\n  - name: b\n    columns: [{name: a_id, type: int}]\n    foreign_keys:\n      - table: a\n        references: [{local: a_id, foreign: id}]\n",
			invalid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bytes([]byte(tt.data))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, schema.ErrInvalidSchema)
				return
			}
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode(t *testing.T) {
	def, err := Decode([]byte("name: shop\ntables:\n  - name: settings\n    columns: [{name: name, type: string}]\n"))
	require.NoError(t, err)
	require.Len(t, def.Tables, 1)
	assert.Equal(t, "settings", def.Tables[0].Name)
	assert.Equal(t, "string", def.Tables[0].Columns[0].Type)
}

func TestFromDatabase(t *testing.T) {
	db, err := File(filepath.Join("testdata", "shop.yaml"))
	require.NoError(t, err)

	data, err := FromDatabase(db).Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "on_delete: cascade")
	assert.NotContains(t, string(data), "on_update")

	again, err := Bytes(data)
	require.NoError(t, err)
	require.Len(t, again.Tables, len(db.Tables))
	for i, table := range db.Tables {
		assert.Equal(t, table.Name, again.Tables[i].Name)
		assert.Len(t, again.Tables[i].Columns, len(table.Columns))
	}
	assert.Equal(t, "flag", again.Table("orders").Column("flags").Singular)
	assert.Equal(t, schema.ActionCascade, again.Table("orders").ForeignKeys[0].OnDelete)
}
