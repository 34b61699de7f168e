// Package charts builds the three dashboard figures. Figures serialize to the
// JSON shape plotly.js accepts for Plotly.newPlot(el, data, layout).
package charts

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type          string    `json:"type"`
	Name          string    `json:"name,omitempty"`
	Mode          string    `json:"mode"`
	X             []any     `json:"x"`
	Y             []float64 `json:"y"`
	Text          []string  `json:"text,omitempty"`
	Line          Line      `json:"line"`
	Marker        *Marker   `json:"marker,omitempty"`
	Opacity       float64   `json:"opacity"`
	ShowLegend    bool      `json:"showlegend"`
	HoverTemplate string    `json:"hovertemplate"`
}

type Line struct {
	Color string  `json:"color,omitempty" yaml:"color" validate:"required"`
	Width float64 `json:"width" yaml:"width" validate:"gt=0"`
	Dash  string  `json:"dash,omitempty" yaml:"dash" validate:"omitempty,oneof=solid dot dash longdash dashdot longdashdot"`
}

type Marker struct {
	Color string  `json:"color" yaml:"color" validate:"required"`
	Size  float64 `json:"size" yaml:"size" validate:"gt=0"`
	Line  Line    `json:"line" yaml:"line"`
}

type Font struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Color  string  `json:"color,omitempty"`
	Weight string  `json:"weight,omitempty"`
}

type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

type Axis struct {
	Title         Title  `json:"title"`
	TickFont      Font   `json:"tickfont"`
	GridColor     string `json:"gridcolor,omitempty"`
	ZeroLineColor string `json:"zerolinecolor,omitempty"`
	Type          string `json:"type,omitempty"`
}

type Legend struct {
	Title       *Title   `json:"title,omitempty"`
	Font        Font     `json:"font"`
	Orientation string   `json:"orientation,omitempty"`
	XAnchor     string   `json:"xanchor,omitempty"`
	YAnchor     string   `json:"yanchor,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	BorderColor string   `json:"bordercolor,omitempty"`
	BorderWidth float64  `json:"borderwidth,omitempty"`
}

type Annotation struct {
	XRef        string  `json:"xref"`
	YRef        string  `json:"yref"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Text        string  `json:"text"`
	ShowArrow   bool    `json:"showarrow"`
	Align       string  `json:"align,omitempty"`
	BorderColor string  `json:"bordercolor,omitempty"`
	BorderWidth float64 `json:"borderwidth,omitempty"`
	BorderPad   float64 `json:"borderpad,omitempty"`
	BGColor     string  `json:"bgcolor,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	Font        Font    `json:"font"`
}

type Layout struct {
	Title        Title        `json:"title"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	Legend       Legend       `json:"legend"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	PlotBGColor  string       `json:"plot_bgcolor,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
}
