package core

// Column identifies a field of the source file by position.
// Column roles are positional; the header text is never used to find them.
type Column int

const (
	ColStore Column = iota
	ColDept
	ColWeekDate
	ColWeeklySales
	ColIsHoliday
	ColType
	ColSize
	ColTemperature
	ColFuelPrice
	ColCPI
	ColUnemploymentRate
)

// SourceColumns is the number of fields every source row must carry.
const SourceColumns = int(ColUnemploymentRate) + 1

var columnNames = [SourceColumns]string{
	"Store", "Dept", "WeekDate", "WeeklySales", "IsHoliday", "Type",
	"Size", "Temperature", "FuelPrice", "CPI", "UnemploymentRate",
}

// String returns the role name of the column.
func (c Column) String() string {
	if c < 0 || int(c) >= SourceColumns {
		return "Unknown"
	}
	return columnNames[c]
}

// SourceRow is one parsed line of the source file.
type SourceRow struct {
	Line   int      // 1-indexed line number in the source file
	Fields []string // at least SourceColumns values
}

// Field returns the value at the column's position.
func (r SourceRow) Field(c Column) string {
	return r.Fields[c]
}

// Record is a projected tuple destined for one normalized table.
type Record []string

// TableInfo contains naming information about a normalized table.
type TableInfo struct {
	Key      string // Unique identifier: "store"
	Label    string // Display name: "Store"
	FileName string // Output file: "Store.csv"
	Order    int    // Position in the write sequence
}

// TableDefinition contains everything needed to project and write a table.
type TableDefinition struct {
	Info    TableInfo
	Columns []Column // Source positions, in output order
}

// Project extracts the table's tuple from a source row.
func (t TableDefinition) Project(row SourceRow) Record {
	rec := make(Record, len(t.Columns))
	for i, c := range t.Columns {
		rec[i] = row.Field(c)
	}
	return rec
}

// ColumnNames returns the role names of the table's columns.
func (t TableDefinition) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.String()
	}
	return names
}

// OrderPolicy controls how a deduplicated table is enumerated for writing.
type OrderPolicy string

const (
	OrderInsertion OrderPolicy = "insertion"
	OrderSorted    OrderPolicy = "sorted"
)

// EscapeMode controls how the writer handles characters that would break
// the unquoted output format.
type EscapeMode string

const (
	EscapeBackslash EscapeMode = "backslash"
	EscapeNone      EscapeMode = "none"
)
