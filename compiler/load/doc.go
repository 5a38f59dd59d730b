// Package load reads relational schemas from external sources: YAML or
// JSON definition files, and databases inspected with atlas.
//
//	db, err := load.File("schema.yaml")
//
// Inspected schemas are converted with FromAtlas:
//
//	s, err := drv.InspectSchema(ctx, "shop", nil)
//	db, err := load.FromAtlas(s, load.WithBinaryUUID("products.id"))
//
// Watch reloads a definition file whenever it changes.
package load
