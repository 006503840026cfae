package tables

import "github.com/JonMunkholm/salesnorm/internal/core"

func init() {
	registerStore()
	registerWeekDate()
	registerAttributes()
	registerSales()
}

func registerStore() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:      "store",
			Label:    "Store",
			FileName: "Store.csv",
			Order:    0,
		},
		Columns: []core.Column{core.ColStore, core.ColSize, core.ColType},
	})
}

func registerWeekDate() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:      "weekdate",
			Label:    "WeekDate",
			FileName: "WeekDate.csv",
			Order:    1,
		},
		Columns: []core.Column{core.ColWeekDate, core.ColIsHoliday},
	})
}

func registerAttributes() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:      "attributes",
			Label:    "Attributes",
			FileName: "Attributes.csv",
			Order:    2,
		},
		Columns: []core.Column{
			core.ColStore,
			core.ColWeekDate,
			core.ColTemperature,
			core.ColFuelPrice,
			core.ColCPI,
			core.ColUnemploymentRate,
		},
	})
}

func registerSales() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:      "sales",
			Label:    "Sales",
			FileName: "Sales.csv",
			Order:    3,
		},
		Columns: []core.Column{core.ColStore, core.ColWeekDate, core.ColDept, core.ColWeeklySales},
	})
}
