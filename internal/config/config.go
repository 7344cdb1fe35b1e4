package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"
)

// Config represents the application configuration
type Config struct {
	Template TemplateConfig `mapstructure:"template"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	Output   OutputConfig   `mapstructure:"output"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
}

// TemplateConfig holds the court-report template location
type TemplateConfig struct {
	Path string `mapstructure:"path"` // Periodic report workbook (.xlsx)
}

// LayoutConfig is the cell-coordinate table of the periodic report template
type LayoutConfig struct {
	ReportSheet string       `mapstructure:"report_sheet"` // Substring of the report sheet name
	AssetsSheet string       `mapstructure:"assets_sheet"` // Substring of the asset inventory sheet name
	Report      ReportCells  `mapstructure:"report"`
	Assets      AssetsLayout `mapstructure:"assets"`
}

// ReportCells are the fixed single-instance cells of the report sheet
type ReportCells struct {
	PersonName      string `mapstructure:"person_name"`
	PersonAddress   string `mapstructure:"person_address"`
	PersonPostal    string `mapstructure:"person_postal"`
	Residence       string `mapstructure:"residence"`
	GuardianAddress string `mapstructure:"guardian_address"`
	GuardianName    string `mapstructure:"guardian_name"`
	GuardianPhone   string `mapstructure:"guardian_phone"`
	PeriodStart     string `mapstructure:"period_start"`
	PeriodEnd       string `mapstructure:"period_end"`
	CreateDate      string `mapstructure:"create_date"`
}

// AssetsLayout describes the asset inventory sheet
type AssetsLayout struct {
	PersonName string `mapstructure:"person_name"`

	// Repeating deposit rows
	BankStartRow int `mapstructure:"bank_start_row"`
	BankMaxRow   int `mapstructure:"bank_max_row"`
	BankRowStep  int `mapstructure:"bank_row_step"`

	// Region wiped before writing
	ClearStartRow int `mapstructure:"clear_start_row"`
	ClearEndRow   int `mapstructure:"clear_end_row"`
	ClearStartCol int `mapstructure:"clear_start_col"`
	ClearEndCol   int `mapstructure:"clear_end_col"`

	Columns BankColumns `mapstructure:"columns"`

	CashTotal     string `mapstructure:"cash_total"`
	FacilityTotal string `mapstructure:"facility_total"`

	FilledMarker string `mapstructure:"filled_marker"`
	EmptyMarker  string `mapstructure:"empty_marker"`
	AdminLabel   string `mapstructure:"admin_label"`
}

// BankColumns are 1-based column numbers within a deposit row
type BankColumns struct {
	Name     int `mapstructure:"name"`
	Branch   int `mapstructure:"branch"`
	Ordinary int `mapstructure:"ordinary"`
	Time     int `mapstructure:"time"`
	Number   int `mapstructure:"number"`
	Date     int `mapstructure:"date"`
	Value    int `mapstructure:"value"`
	Admin    int `mapstructure:"admin"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Dir string `mapstructure:"dir"` // Where generated reports and the log file go
}

// StoreConfig holds the registry database settings
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	DevMode bool   `mapstructure:"dev_mode"`
}

// Load reads the configuration from a file or uses defaults.
// A missing file is not an error. KOKEN_* environment variables override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath == "" {
		configPath = "config.yaml"
	}
	v.SetConfigFile(configPath)

	v.SetEnvPrefix("koken")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file") ||
			strings.Contains(err.Error(), "cannot find") {
			fmt.Println("==========================================")
			fmt.Println("Config file not found. Using defaults:")
			fmt.Printf("  Template: %s\n", v.GetString("template.path"))
			fmt.Printf("  Output:   %s\n", v.GetString("output.dir"))
			fmt.Println("==========================================")
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		fmt.Printf("Loaded config from: %s\n", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.normalizePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the filesystem
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults only; cannot fail to decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults configures the layout of the standard family-court template
func setDefaults(v *viper.Viper) {
	v.SetDefault("template.path", "./templates/periodic_report.xlsx")

	v.SetDefault("layout.report_sheet", "後見事務報告書")
	v.SetDefault("layout.assets_sheet", "財産目録")

	v.SetDefault("layout.report.person_name", "V5")
	v.SetDefault("layout.report.person_address", "F7")
	v.SetDefault("layout.report.person_postal", "F6")
	v.SetDefault("layout.report.residence", "F9")
	v.SetDefault("layout.report.guardian_address", "S1")
	v.SetDefault("layout.report.guardian_name", "S3")
	v.SetDefault("layout.report.guardian_phone", "S4")
	v.SetDefault("layout.report.period_start", "E12")
	v.SetDefault("layout.report.period_end", "L12")
	v.SetDefault("layout.report.create_date", "V1")

	v.SetDefault("layout.assets.person_name", "W2")
	v.SetDefault("layout.assets.bank_start_row", 25)
	v.SetDefault("layout.assets.bank_max_row", 36) // row 37 holds the cash line
	v.SetDefault("layout.assets.bank_row_step", 2)
	v.SetDefault("layout.assets.clear_start_row", 25)
	v.SetDefault("layout.assets.clear_end_row", 39)
	v.SetDefault("layout.assets.clear_start_col", 2)   // B
	v.SetDefault("layout.assets.clear_end_col", 32)    // AF
	v.SetDefault("layout.assets.columns.name", 3)      // C
	v.SetDefault("layout.assets.columns.branch", 8)    // H
	v.SetDefault("layout.assets.columns.ordinary", 13) // M
	v.SetDefault("layout.assets.columns.time", 15)     // O
	v.SetDefault("layout.assets.columns.number", 17)   // Q
	v.SetDefault("layout.assets.columns.date", 21)     // U
	v.SetDefault("layout.assets.columns.value", 24)    // X
	v.SetDefault("layout.assets.columns.admin", 29)    // AC
	v.SetDefault("layout.assets.cash_total", "X37")
	v.SetDefault("layout.assets.facility_total", "X39")
	v.SetDefault("layout.assets.filled_marker", "■")
	v.SetDefault("layout.assets.empty_marker", "□")
	v.SetDefault("layout.assets.admin_label", "成年後見人")

	v.SetDefault("output.dir", "./output")
	v.SetDefault("store.path", "./data/koken.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.dev_mode", false)
}

// normalizePaths converts relative paths to absolute paths
func (c *Config) normalizePaths() error {
	for _, p := range []*string{&c.Template.Path, &c.Output.Dir, &c.Store.Path} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// GetOutputPath returns the report path for a person
func (c *Config) GetOutputPath(personID, personName string) string {
	name := fmt.Sprintf("定期報告_%s_%s.xlsx", personID, personName)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '　':
			return '_'
		}
		return r
	}, name)
	return filepath.Join(c.Output.Dir, name)
}

// Validate checks that the layout table is usable
func (c *Config) Validate() error {
	if c.Layout.ReportSheet == "" && c.Layout.AssetsSheet == "" {
		return fmt.Errorf("layout.report_sheet and layout.assets_sheet cannot both be empty")
	}

	r := c.Layout.Report
	cells := map[string]string{
		"layout.report.person_name":      r.PersonName,
		"layout.report.person_address":   r.PersonAddress,
		"layout.report.person_postal":    r.PersonPostal,
		"layout.report.residence":        r.Residence,
		"layout.report.guardian_address": r.GuardianAddress,
		"layout.report.guardian_name":    r.GuardianName,
		"layout.report.guardian_phone":   r.GuardianPhone,
		"layout.report.period_start":     r.PeriodStart,
		"layout.report.period_end":       r.PeriodEnd,
		"layout.report.create_date":      r.CreateDate,
		"layout.assets.person_name":      c.Layout.Assets.PersonName,
		"layout.assets.cash_total":       c.Layout.Assets.CashTotal,
		"layout.assets.facility_total":   c.Layout.Assets.FacilityTotal,
	}
	for key, cell := range cells {
		if cell == "" {
			continue
		}
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			return fmt.Errorf("%s: invalid cell %q: %w", key, cell, err)
		}
	}

	a := c.Layout.Assets
	if a.BankStartRow < 1 || a.BankMaxRow < a.BankStartRow {
		return fmt.Errorf("layout.assets: bank rows %d..%d out of order", a.BankStartRow, a.BankMaxRow)
	}
	if a.BankRowStep < 1 {
		return fmt.Errorf("layout.assets.bank_row_step must be positive")
	}
	if a.ClearStartRow < 1 || a.ClearEndRow < a.ClearStartRow {
		return fmt.Errorf("layout.assets: clear rows %d..%d out of order", a.ClearStartRow, a.ClearEndRow)
	}
	if a.ClearStartCol < 1 || a.ClearEndCol < a.ClearStartCol || a.ClearEndCol > excelize.MaxColumns {
		return fmt.Errorf("layout.assets: clear columns %d..%d out of order", a.ClearStartCol, a.ClearEndCol)
	}
	return nil
}

// Print displays the current configuration
func (c *Config) Print() {
	fmt.Println("=== Koken Report Configuration ===")
	fmt.Printf("Template:         %s\n", c.Template.Path)
	fmt.Printf("Report Sheet:     *%s*\n", c.Layout.ReportSheet)
	fmt.Printf("Assets Sheet:     *%s*\n", c.Layout.AssetsSheet)
	fmt.Printf("Deposit Rows:     %d..%d step %d\n", c.Layout.Assets.BankStartRow, c.Layout.Assets.BankMaxRow, c.Layout.Assets.BankRowStep)
	fmt.Printf("Cleared Region:   rows %d..%d, cols %d..%d\n", c.Layout.Assets.ClearStartRow, c.Layout.Assets.ClearEndRow, c.Layout.Assets.ClearStartCol, c.Layout.Assets.ClearEndCol)
	fmt.Printf("Output Directory: %s\n", c.Output.Dir)
	fmt.Printf("Registry:         %s\n", c.Store.Path)
	fmt.Printf("Server Address:   %s\n", c.Server.Addr)
	fmt.Println("==================================")
}
