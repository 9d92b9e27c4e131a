package layout

// Default geometry, in pixels.
const (
	DefaultNodeWidth     = 200
	DefaultNodeHeight    = 60
	DefaultBoxWidth      = 240
	DefaultBoxHeight     = 60
	DefaultNodeGap       = 10
	DefaultColumnGap     = 40
	DefaultLeftMargin    = 20
	DefaultHeaderOffset  = 60
	DefaultMinHeight     = 600
	DefaultFallbackWidth = 1200
)

// Config holds the fixed geometry of a layout. Plugin nodes (providers and
// consumers) use the node size; extensions, extension points and exposed
// components use the box size.
type Config struct {
	NodeWidth     float64 `toml:"node_width" json:"nodeWidth"`
	NodeHeight    float64 `toml:"node_height" json:"nodeHeight"`
	BoxWidth      float64 `toml:"box_width" json:"boxWidth"`
	BoxHeight     float64 `toml:"box_height" json:"boxHeight"`
	NodeGap       float64 `toml:"node_gap" json:"nodeGap"`           // Vertical gap between stacked nodes
	ColumnGap     float64 `toml:"column_gap" json:"columnGap"`       // Minimum horizontal gap between columns
	LeftMargin    float64 `toml:"left_margin" json:"leftMargin"`     // X of the first column
	HeaderOffset  float64 `toml:"header_offset" json:"headerOffset"` // Space reserved above the first row
	MinHeight     float64 `toml:"min_height" json:"minHeight"`
	FallbackWidth float64 `toml:"fallback_width" json:"fallbackWidth"` // Used when the viewport reports no width
}

// DefaultConfig returns the default geometry.
func DefaultConfig() Config {
	return Config{
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
		BoxWidth:      DefaultBoxWidth,
		BoxHeight:     DefaultBoxHeight,
		NodeGap:       DefaultNodeGap,
		ColumnGap:     DefaultColumnGap,
		LeftMargin:    DefaultLeftMargin,
		HeaderOffset:  DefaultHeaderOffset,
		MinHeight:     DefaultMinHeight,
		FallbackWidth: DefaultFallbackWidth,
	}
}

// WithDefaults fills zero or negative fields with their defaults.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	orDefault(&c.NodeWidth, d.NodeWidth)
	orDefault(&c.NodeHeight, d.NodeHeight)
	orDefault(&c.BoxWidth, d.BoxWidth)
	orDefault(&c.BoxHeight, d.BoxHeight)
	orDefault(&c.NodeGap, d.NodeGap)
	orDefault(&c.ColumnGap, d.ColumnGap)
	orDefault(&c.LeftMargin, d.LeftMargin)
	orDefault(&c.HeaderOffset, d.HeaderOffset)
	orDefault(&c.MinHeight, d.MinHeight)
	orDefault(&c.FallbackWidth, d.FallbackWidth)
	return c
}

func orDefault(v *float64, d float64) {
	if *v <= 0 {
		*v = d
	}
}

// RightMargin is the responsive margin kept right of the last column.
func RightMargin(width float64) float64 {
	switch {
	case width < 800:
		return 20
	case width < 1200:
		return 40
	default:
		return 60
	}
}

// GroupSpacing is the responsive space between the header and the first
// row.
func GroupSpacing(height float64) float64 {
	switch {
	case height < 600:
		return 20
	case height < 900:
		return 30
	default:
		return 40
	}
}
