// Package core provides the business logic for splitting the denormalized
// sales file into its normalized tables.
//
// This package has no CLI or database dependencies. It can be driven by the
// command in cmd/salesnorm, by the Postgres loader, or by tests.
//
// # Pipeline
//
// A run is a single forward pass:
//
//  1. [Reader] splits each line on the delimiter. Quotes and backslashes are
//     literal; the first line is the header.
//  2. Each registered [TableDefinition] projects the row onto its columns.
//  3. Each projection is added to the table's [RecordSet], which keeps one
//     copy of every distinct tuple in first-insertion order.
//  4. [WriteTableFile] writes the header projection and the set to one file
//     per table.
//
// # Table Registry
//
// Tables are registered at init time using [Register]; the four sales tables
// live in the tables subpackage:
//
//	core.Register(core.TableDefinition{
//	    Info:    core.TableInfo{Key: "store", Label: "Store", FileName: "Store.csv"},
//	    Columns: []core.Column{core.ColStore, core.ColSize, core.ColType},
//	})
//
// # Error Handling
//
// A short row or an empty file is a [FormatError] and stops the run before
// anything is written. File failures are [IOError] values. Output tables are
// written independently; [Service.Write] joins their errors. [MapError] turns
// any of them into a coded message for the user.
package core
