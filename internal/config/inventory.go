package config

import "time"

type Inventory struct {
	// Timezone decides which calendar day "today" is on the dashboard and in
	// export file names.
	Timezone           time.Location `env:"INVENTORY_TIMEZONE" envDefault:"Asia/Shanghai"`
	AllowNegativeStock bool          `env:"INVENTORY_ALLOW_NEGATIVE_STOCK" envDefault:"false"`
	ExportLabel        string        `env:"INVENTORY_EXPORT_LABEL" envDefault:"库存数据"`
	CurrencySymbol     string        `env:"INVENTORY_CURRENCY_SYMBOL" envDefault:"¥"`
	RecentLimit        int           `env:"INVENTORY_RECENT_LIMIT" envDefault:"5"`
}
