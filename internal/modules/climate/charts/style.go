package charts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultStyleYAML []byte

// ErrInvalidStyle wraps validation failures of a style document.
var ErrInvalidStyle = errors.New("invalid chart style")

var validate = validator.New()

// Style holds every presentation setting of the three figures.
type Style struct {
	Font       FontStyle       `yaml:"font"`
	Background BackgroundStyle `yaml:"background"`
	Monthly    MonthlyStyle    `yaml:"monthly"`
	TimeSeries TimeSeriesStyle `yaml:"timeseries"`
	Annual     AnnualStyle     `yaml:"annual"`
}

type FontStyle struct {
	Family        string  `yaml:"family" validate:"required"`
	Color         string  `yaml:"color" validate:"required"`
	Weight        string  `yaml:"weight"`
	TitleSize     float64 `yaml:"title_size" validate:"gt=0"`
	AxisTitleSize float64 `yaml:"axis_title_size" validate:"gt=0"`
	TickSize      float64 `yaml:"tick_size" validate:"gt=0"`
}

type BackgroundStyle struct {
	Plot  string `yaml:"plot"`
	Paper string `yaml:"paper"`
	Grid  string `yaml:"grid"`
}

type LegendStyle struct {
	Title       string   `yaml:"title"`
	TitleSize   float64  `yaml:"title_size" validate:"gte=0"`
	FontSize    float64  `yaml:"font_size" validate:"gt=0"`
	Orientation string   `yaml:"orientation" validate:"omitempty,oneof=h v"`
	XAnchor     string   `yaml:"xanchor"`
	YAnchor     string   `yaml:"yanchor"`
	X           *float64 `yaml:"x"`
	Y           *float64 `yaml:"y"`
	BorderColor string   `yaml:"border_color"`
	BorderWidth float64  `yaml:"border_width" validate:"gte=0"`
}

type ChartFrame struct {
	Title  string      `yaml:"title" validate:"required"`
	XTitle string      `yaml:"x_title"`
	YTitle string      `yaml:"y_title"`
	Width  int         `yaml:"width" validate:"gt=0"`
	Height int         `yaml:"height" validate:"gt=0"`
	Legend LegendStyle `yaml:"legend"`
}

type SeriesStyle struct {
	Name    string  `yaml:"name"`
	Line    Line    `yaml:"line"`
	Opacity float64 `yaml:"opacity" validate:"gte=0,lte=1"`
	Marker  *Marker `yaml:"marker"`
}

type MonthlyStyle struct {
	ChartFrame `yaml:",inline"`
	Historical struct {
		From    int     `yaml:"from"`
		To      int     `yaml:"to" validate:"gtefield=From"`
		Label   string  `yaml:"label" validate:"required"`
		Line    Line    `yaml:"line"`
		Opacity float64 `yaml:"opacity" validate:"gte=0,lte=1"`
	} `yaml:"historical"`
	Highlighted struct {
		Line    Line           `yaml:"line"`
		Opacity float64        `yaml:"opacity" validate:"gte=0,lte=1"`
		Colors  map[int]string `yaml:"colors" validate:"dive,required"`
	} `yaml:"highlighted"`
	Latest struct {
		Year    int     `yaml:"year"`
		Line    Line    `yaml:"line"`
		Opacity float64 `yaml:"opacity" validate:"gte=0,lte=1"`
	} `yaml:"latest"`
}

type TimeSeriesStyle struct {
	ChartFrame      `yaml:",inline"`
	Series          SeriesStyle    `yaml:"series"`
	DecadeLineWidth float64        `yaml:"decade_line_width" validate:"gt=0"`
	DecadeColors    map[int]string `yaml:"decade_colors" validate:"dive,required"`
	FallbackColors  []string       `yaml:"fallback_colors" validate:"min=1,dive,required"`
}

type AnnualStyle struct {
	ChartFrame `yaml:",inline"`
	Series     SeriesStyle `yaml:"series"`
	Trend      SeriesStyle `yaml:"trend"`
	Annotation struct {
		X           float64 `yaml:"x"`
		Y           float64 `yaml:"y"`
		FontSize    float64 `yaml:"font_size" validate:"gt=0"`
		BorderColor string  `yaml:"border_color"`
		BorderWidth float64 `yaml:"border_width"`
		BorderPad   float64 `yaml:"border_pad"`
		Background  string  `yaml:"background"`
		Opacity     float64 `yaml:"opacity" validate:"gte=0,lte=1"`
	} `yaml:"annotation"`
}

// DefaultStyle returns the embedded style.
func DefaultStyle() Style {
	s, err := ParseStyle(defaultStyleYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded styles.yaml: %v", err))
	}
	return s
}

// LoadStyle reads a YAML style file. An empty path yields the embedded default.
// Keys missing from the file keep their default values.
func LoadStyle(path string) (Style, error) {
	if path == "" {
		return DefaultStyle(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read style %s: %w", path, err)
	}
	return parseOver(DefaultStyle(), data)
}

// ParseStyle decodes and validates a complete style document.
func ParseStyle(data []byte) (Style, error) {
	return parseOver(Style{}, data)
}

func parseOver(base Style, data []byte) (Style, error) {
	s := base
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Style{}, fmt.Errorf("parse style: %w", err)
	}
	if err := validate.Struct(s); err != nil {
		return Style{}, fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	return s, nil
}

func (s Style) font(size float64) Font {
	return Font{Family: s.Font.Family, Size: size, Color: s.Font.Color, Weight: s.Font.Weight}
}

func (s Style) layout(frame ChartFrame) Layout {
	return Layout{
		Title: Title{Text: frame.Title, Font: s.font(s.Font.TitleSize)},
		XAxis: Axis{
			Title:     Title{Text: frame.XTitle, Font: s.font(s.Font.AxisTitleSize)},
			TickFont:  s.font(s.Font.TickSize),
			GridColor: s.Background.Grid,
		},
		YAxis: Axis{
			Title:     Title{Text: frame.YTitle, Font: s.font(s.Font.AxisTitleSize)},
			TickFont:  s.font(s.Font.TickSize),
			GridColor: s.Background.Grid,
		},
		Legend:       s.legend(frame.Legend),
		Width:        frame.Width,
		Height:       frame.Height,
		PlotBGColor:  s.Background.Plot,
		PaperBGColor: s.Background.Paper,
	}
}

func (s Style) legend(l LegendStyle) Legend {
	out := Legend{
		Font:        s.font(l.FontSize),
		Orientation: l.Orientation,
		XAnchor:     l.XAnchor,
		YAnchor:     l.YAnchor,
		X:           l.X,
		Y:           l.Y,
		BorderColor: l.BorderColor,
		BorderWidth: l.BorderWidth,
	}
	if l.Title != "" {
		out.Title = &Title{Text: l.Title, Font: s.font(l.TitleSize)}
	}
	return out
}
