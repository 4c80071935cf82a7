package layoutfile

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
)

const tomlLayout = `
resize_style = "push"
tabbed = true

[constraints.width]
min_px = 120
min_pct = 15

[defaults]
direction = "v"

[initial_grid]
direction = "h"

[[initial_grid.children]]
component_id = "editor"
weight = 70

[[initial_grid.children]]
weight = 30
active_tab = 1

[[initial_grid.children.tabs]]
component_id = "logs"

[[initial_grid.children.tabs]]
component_id = "metrics"
`

const yamlLayout = `
resize_style: push
tabbed: true
constraints:
  width:
    min_px: 120
    min_pct: 15
defaults:
  direction: v
initial_grid:
  direction: h
  children:
    - component_id: editor
      weight: 70
    - weight: 30
      active_tab: 1
      tabs:
        - component_id: logs
        - component_id: metrics
`

const jsonLayout = `{
  "resize_style": "push",
  "tabbed": true,
  "constraints": {"width": {"min_px": 120, "min_pct": 15}},
  "defaults": {"direction": "v"},
  "initial_grid": {
    "direction": "h",
    "children": [
      {"component_id": "editor", "weight": 70},
      {"weight": 30, "active_tab": 1, "tabs": [{"component_id": "logs"}, {"component_id": "metrics"}]}
    ]
  }
}`

func TestReadFileFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"TOML", TOML, tomlLayout},
		{"YAML", YAML, yamlLayout},
		{"JSON", JSON, jsonLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ReadFile(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			cfg, err := f.Config()
			if err != nil {
				t.Fatalf("Config() error: %v", err)
			}
			if cfg.ResizeStyle != grid.Push || !cfg.Tabbed || !cfg.Widgets {
				t.Errorf("style = %s tabbed = %v widgets = %v", cfg.ResizeStyle, cfg.Tabbed, cfg.Widgets)
			}
			if cfg.Defaults.Direction != grid.Vertical {
				t.Errorf("Defaults.Direction = %s, want v", cfg.Defaults.Direction)
			}
			want := grid.AxisConstraint{MinPx: 120, MinPct: 15}
			if cfg.Defaults.Constraints.Width != want {
				t.Errorf("width constraint = %+v, want %+v", cfg.Defaults.Constraints.Width, want)
			}
			if cfg.Defaults.Constraints.Height != grid.DefaultConstraints.Height {
				t.Errorf("height constraint = %+v, want default", cfg.Defaults.Constraints.Height)
			}

			g := cfg.InitialGrid
			if g == nil || len(g.Children) != 2 {
				t.Fatalf("InitialGrid = %+v", g)
			}
			if g.Children[0].ComponentID != "editor" || g.Children[0].Weight != 70 {
				t.Errorf("first child = %+v", g.Children[0])
			}
			if tabs := g.Children[1].Tabs; len(tabs) != 2 || tabs[1].ComponentID != "metrics" || g.Children[1].ActiveTab != 1 {
				t.Errorf("second child = %+v", g.Children[1])
			}
		})
	}
}

func TestReadFileBareDescription(t *testing.T) {
	input := `{"direction": "v", "children": [{"component_id": "a"}, {"component_id": "b"}]}`
	f, err := ReadFile(strings.NewReader(input), JSON)
	if err != nil {
		t.Fatal(err)
	}
	if f.InitialGrid == nil || f.InitialGrid.Direction != grid.Vertical || len(f.InitialGrid.Children) != 2 {
		t.Errorf("InitialGrid = %+v", f.InitialGrid)
	}
}

func TestDescriptionRoundTrip(t *testing.T) {
	desc := grid.Description{
		Direction: grid.Horizontal,
		Children: []grid.Description{
			{Direction: grid.Vertical, Weight: 60, Children: []grid.Description{
				{ComponentID: "editor", Weight: 70, Title: "Editor"},
				{ComponentID: "terminal", Weight: 30, Constraints: &grid.ConstraintSpec{
					Height: &grid.AxisSpec{MinPx: grid.Float(80)},
				}},
			}},
			{Weight: 40, ActiveTab: 1, Tabs: []grid.Description{
				{ComponentID: "outline"},
				{ComponentID: "search"},
			}},
		},
	}
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteDescription(&buf, format, desc); err != nil {
				t.Fatalf("WriteDescription() error: %v", err)
			}
			got, err := ReadDescription(&buf, format)
			if err != nil {
				t.Fatalf("ReadDescription() error: %v\n%s", err, buf.String())
			}
			if !reflect.DeepEqual(got, desc) {
				t.Errorf("round trip:\n got %+v\nwant %+v", got, desc)
			}
		})
	}
}

func TestReadDescriptionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errs.Code
	}{
		{"Malformed", `{"direction": `, errs.ErrCodeInvalidFormat},
		{"TileRoot", `{"component_id": "a"}`, errs.ErrCodeInvalidDescription},
		{"BadDirection", `{"direction": "x"}`, errs.ErrCodeInvalidDescription},
		{"NegativeWeight", `{"direction": "h", "children": [{"component_id": "a", "weight": -5}]}`, errs.ErrCodeInvalidDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDescription(strings.NewReader(tt.input), JSON)
			if !errs.Is(err, tt.code) {
				t.Errorf("ReadDescription() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"layout.json", JSON, false},
		{"dir/layout.TOML", TOML, false},
		{"layout.yaml", YAML, false},
		{"layout.yml", YAML, false},
		{"layout.txt", "", true},
		{"layout", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(path, []byte(yamlLayout), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.InitialGrid == nil || cfg.ResizeStyle != grid.Push {
		t.Errorf("LoadConfig() = %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "layout.ini")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Load(.ini) error = %v, want INVALID_FORMAT", err)
	}

	out := filepath.Join(dir, "out.toml")
	if err := ExportDescription(out, *cfg.InitialGrid); err != nil {
		t.Fatalf("ExportDescription() error: %v", err)
	}
	back, err := ImportDescription(out)
	if err != nil {
		t.Fatalf("ImportDescription() error: %v", err)
	}
	if !reflect.DeepEqual(back, *cfg.InitialGrid) {
		t.Errorf("exported layout changed:\n got %+v\nwant %+v", back, *cfg.InitialGrid)
	}
}

func TestFileFromConfig(t *testing.T) {
	f, err := ReadFile(strings.NewReader(jsonLayout), JSON)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Config()
	if err != nil {
		t.Fatal(err)
	}
	back := FileFromConfig(cfg, cfg.InitialGrid)
	if back.ResizeStyle != grid.Push || !back.Tabbed || back.Widgets {
		t.Errorf("FileFromConfig() = %+v", back)
	}
	if back.Defaults == nil || back.Defaults.Direction != grid.Vertical {
		t.Errorf("Defaults = %+v", back.Defaults)
	}
}
