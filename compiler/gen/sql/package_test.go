package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenPackage(t *testing.T) {
	h := newMockHelper(t)

	t.Run("orders", func(t *testing.T) {
		src := genPackage(h, h.shopType(t, "orders")).GoString()
		assert.Contains(t, src, "package orders")
		assert.Regexp(t, `Table\s+= "orders"`, src)
		assert.Regexp(t, `ColumnCustomerID\s+= "customer_id"`, src)
		assert.Regexp(t, `ColumnCreatedAt\s+= "created_at"`, src)
		assert.Regexp(t, `RelationLines\s+= "Lines"`, src)
		assert.Regexp(t, `RelationProducts\s+= "Products"`, src)
		assert.Contains(t, src, "var PrimaryKey = []string{ColumnCustomerID, ColumnOrderSeq}")
		assert.Contains(t, src, "var StatusValues = []string{")
		assert.Contains(t, src, "var FlagsValues = []string{")
		assert.NotContains(t, src, "TagsValues", "arrays have no declared values")
	})

	t.Run("keyless table", func(t *testing.T) {
		src := genPackage(h, h.shopType(t, "settings")).GoString()
		assert.Contains(t, src, "package settings")
		assert.Contains(t, src, "var Columns = []string{ColumnName, ColumnValue}")
		assert.NotContains(t, src, "PrimaryKey")
	})

	t.Run("self references", func(t *testing.T) {
		src := genPackage(h, h.shopType(t, "employees")).GoString()
		assert.Contains(t, src, "RelationEmployeeRelatedByManagerID")
		assert.Contains(t, src, "RelationEmployeesRelatedByMentorID")
	})
}
