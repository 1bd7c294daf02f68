package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/rivergraph/pkg/cache"
	"github.com/matzehuels/rivergraph/pkg/errors"
)

var validate = validator.New()

// LoadConfig reads options from a .toml, .yaml or .yml file. Defaults are
// not applied.
func LoadConfig(path string) (Options, error) {
	var opts Options
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	default:
		return opts, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return opts, nil
}

// SetDefaults fills every zero field with its default.
func (o *Options) SetDefaults() {
	if o.NameField == "" {
		o.NameField = DefaultNameField
	}
	if o.DefaultName == "" {
		o.DefaultName = DefaultName
	}
	if o.SnapTolerance == 0 {
		o.SnapTolerance = DefaultSnapTolerance
	}
	if o.SegmentLengthKm == 0 {
		o.SegmentLengthKm = DefaultSegmentLengthKm
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.StartEdgeID == 0 {
		o.StartEdgeID = 1
	}
	if o.LengthMethod == "" {
		o.LengthMethod = DefaultLengthMethod
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks field constraints. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return formatValidationError(err)
	}
	if err := errors.ValidateNameField(o.NameField); err != nil {
		return err
	}
	for _, s := range o.Sinks {
		if err := errors.ValidateSinkURL(s); err != nil {
			return err
		}
	}
	if o.Data == nil {
		if err := errors.ValidatePath(o.Input); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// formatValidationError reports the first failed constraint as a config error.
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate options")
	}
	e := verrs[0]
	var msg string
	switch e.Tag() {
	case "required":
		msg = "is required"
	case "gt":
		msg = fmt.Sprintf("must be greater than %s, got %v", e.Param(), e.Value())
	case "gte":
		msg = fmt.Sprintf("must be at least %s, got %v", e.Param(), e.Value())
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s], got %q", e.Param(), e.Value())
	default:
		msg = fmt.Sprintf("failed %s validation", e.Tag())
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s %s", e.Field(), msg)
}

// NetworkKeyOpts returns cache key options covering every field that
// changes the built graph.
func (o *Options) NetworkKeyOpts() cache.NetworkKeyOpts {
	return cache.NetworkKeyOpts{
		SnapTolerance:     o.SnapTolerance,
		SegmentLengthKm:   o.SegmentLengthKm,
		StartEdgeID:       o.StartEdgeID,
		NameField:         o.NameField,
		DefaultName:       o.DefaultName,
		LengthMethod:      o.LengthMethod,
		ProximityRadiusKm: o.ProximityRadiusKm,
		Dissolve:          o.Dissolve,
		Filter:            o.Filter,
	}
}
