package layoutfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Format is a file encoding.
type Format string

const (
	JSON Format = "json"
	TOML Format = "toml"
	YAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{JSON, TOML, YAML}

// FormatFromPath picks the encoding for path from its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported layout file %q (want .json, .toml, .yaml or .yml)", path)
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, TOML, YAML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want json, toml or yaml)", s)
}

// File is the on-disk form of a grid configuration.
type File struct {
	ResizeStyle grid.ResizeStyle     `json:"resize_style,omitempty" toml:"resize_style,omitempty" yaml:"resize_style,omitempty"`
	Constraints *grid.ConstraintSpec `json:"constraints,omitempty" toml:"constraints,omitempty" yaml:"constraints,omitempty"`
	Defaults    *Defaults            `json:"defaults,omitempty" toml:"defaults,omitempty" yaml:"defaults,omitempty"`
	Tabbed      bool                 `json:"tabbed,omitempty" toml:"tabbed,omitempty" yaml:"tabbed,omitempty"`
	Widgets     bool                 `json:"widgets,omitempty" toml:"widgets,omitempty" yaml:"widgets,omitempty"`
	Debug       bool                 `json:"debug,omitempty" toml:"debug,omitempty" yaml:"debug,omitempty"`
	InitialGrid *grid.Description    `json:"initial_grid,omitempty" toml:"initial_grid,omitempty" yaml:"initial_grid,omitempty"`
}

// Defaults holds file-level fallbacks. Constraints only applies when the
// file has no top-level constraints.
type Defaults struct {
	Direction   grid.Direction       `json:"direction,omitempty" toml:"direction,omitempty" yaml:"direction,omitempty"`
	Constraints *grid.ConstraintSpec `json:"constraints,omitempty" toml:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Config converts f into a validated grid.Config.
func (f File) Config() (grid.Config, error) {
	cfg := grid.Config{
		InitialGrid: f.InitialGrid,
		Constraints: f.Constraints,
		ResizeStyle: f.ResizeStyle,
		Tabbed:      f.Tabbed,
		Widgets:     f.Widgets,
		Debug:       f.Debug,
	}
	if f.Defaults != nil {
		cfg.Defaults.Direction = f.Defaults.Direction
		if cfg.Constraints == nil {
			cfg.Constraints = f.Defaults.Constraints
		}
	}
	return grid.NewConfig(cfg)
}

// FileFromConfig is the inverse of [File.Config] for the fields a file can
// carry. Render callbacks are dropped.
func FileFromConfig(cfg grid.Config, layout *grid.Description) File {
	f := File{
		ResizeStyle: cfg.ResizeStyle,
		Constraints: cfg.Constraints,
		Tabbed:      cfg.Tabbed,
		Widgets:     cfg.Widgets && !cfg.Tabbed,
		Debug:       cfg.Debug,
		InitialGrid: layout,
	}
	if cfg.Defaults.Direction != "" && cfg.Defaults.Direction != grid.Horizontal {
		f.Defaults = &Defaults{Direction: cfg.Defaults.Direction}
	}
	return f
}

// Decode reads all of r and decodes it into v using format.
func Decode(r io.Reader, format Format, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	switch format {
	case JSON:
		err = json.Unmarshal(data, v)
	case TOML:
		err = toml.Unmarshal(data, v)
	case YAML:
		err = yaml.Unmarshal(data, v)
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return nil
}

// Encode writes v to w using format. JSON and YAML are indented by two spaces.
func Encode(w io.Writer, format Format, v any) error {
	var err error
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	case TOML:
		err = toml.NewEncoder(w).Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// ReadFile decodes a configuration file from r. A bare grid description is
// accepted in place of a full file and becomes its initial grid.
func ReadFile(r io.Reader, format Format) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("read: %w", err)
	}
	var f File
	if err := Decode(bytes.NewReader(data), format, &f); err != nil {
		return File{}, err
	}
	if f.InitialGrid != nil {
		return f, nil
	}
	var desc grid.Description
	if err := Decode(bytes.NewReader(data), format, &desc); err != nil {
		return File{}, err
	}
	if desc.IsGrid() {
		f.InitialGrid = &desc
		// A bare grid's constraints key belongs to the grid, not the file.
		f.Constraints = nil
	}
	return f, nil
}

// ReadDescription decodes a grid description from r and validates it.
func ReadDescription(r io.Reader, format Format) (grid.Description, error) {
	var desc grid.Description
	if err := Decode(r, format, &desc); err != nil {
		return desc, err
	}
	if !desc.IsGrid() {
		return desc, errs.New(errs.ErrCodeInvalidDescription, "layout root must be a grid")
	}
	if err := desc.Validate(); err != nil {
		return desc, err
	}
	return desc, nil
}

// WriteDescription encodes desc to w using format.
func WriteDescription(w io.Writer, format Format, desc grid.Description) error {
	return Encode(w, format, desc)
}

// Load reads the configuration file at path, choosing the format from its
// extension.
func Load(path string) (File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return File{}, err
	}
	fh, err := open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()

	f, err := ReadFile(fh, format)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadConfig reads the file at path and returns the validated grid.Config.
func LoadConfig(path string) (grid.Config, error) {
	f, err := Load(path)
	if err != nil {
		return grid.Config{}, err
	}
	cfg, err := f.Config()
	if err != nil {
		return grid.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ImportDescription reads a bare description from the file at path.
func ImportDescription(path string) (grid.Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return grid.Description{}, err
	}
	fh, err := open(path)
	if err != nil {
		return grid.Description{}, err
	}
	defer fh.Close()
	desc, err := ReadDescription(fh, format)
	if err != nil {
		return desc, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// ExportDescription writes desc to path in the format its extension names.
func ExportDescription(path string, desc grid.Description) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()
	return WriteDescription(fh, format, desc)
}

func open(path string) (*os.File, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return fh, nil
}
