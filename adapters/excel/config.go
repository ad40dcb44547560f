package excel

// Config holds workbook layout options
type Config struct {
	Creator     string  `json:"creator" yaml:"creator"`
	LabelWidth  float64 `json:"label_width" yaml:"label_width"`
	ValueWidth  float64 `json:"value_width" yaml:"value_width"`
	NumberStyle int     `json:"number_style" yaml:"number_style"`
}

// DefaultConfig returns the layout used by the CLI
func DefaultConfig() Config {
	return Config{
		Creator:     "budgetplan",
		LabelWidth:  30,
		ValueWidth:  14,
		NumberStyle: 4, // #,##0.00
	}
}
