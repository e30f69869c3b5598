// Package settings persists the household preferences: macro-region, school
// year and data source.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"

	"github.com/rbright/waybar-schoolholidays/internal/region"
	"github.com/rbright/waybar-schoolholidays/internal/schedule"
	"github.com/rbright/waybar-schoolholidays/internal/state"
)

const sectionName = "school-holidays"

const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

type Settings struct {
	Region     string `ini:"region" validate:"oneof=North Middle South"`
	SchoolYear string `ini:"school_year" validate:"required,schoolyear"`
	Source     string `ini:"source" validate:"oneof=live fallback"`
}

type Store struct {
	path     string
	defaults Settings
	validate *validator.Validate
}

func NewStore(path string, defaults Settings) *Store {
	v := validator.New()
	_ = v.RegisterValidation("schoolyear", func(fl validator.FieldLevel) bool {
		_, ok := schedule.ParseSchoolYear(fl.Field().String())
		return ok
	})

	return &Store{path: path, defaults: canonical(defaults), validate: v}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields the defaults and any
// invalid field is replaced by its default, so a damaged file never blocks
// the module.
func (s *Store) Load() (Settings, error) {
	loaded := s.defaults

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.withDefaults(loaded), nil
		}
		return Settings{}, fmt.Errorf("stat settings file %s: %w", s.path, err)
	}

	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file %s: %w", s.path, err)
	}
	if err := file.Section(sectionName).MapTo(&loaded); err != nil {
		return Settings{}, fmt.Errorf("decode settings file %s: %w", s.path, err)
	}

	return s.withDefaults(canonical(loaded)), nil
}

func (s *Store) Save(value Settings) error {
	value = canonical(value)
	if err := s.Validate(value); err != nil {
		return err
	}

	file := ini.Empty()
	section, err := file.NewSection(sectionName)
	if err != nil {
		return fmt.Errorf("create settings section: %w", err)
	}
	if err := section.ReflectFrom(&value); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("render settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	return state.WriteFileAtomically(s.path, buf.Bytes())
}

// Update loads the current settings, applies fn and saves the result.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	current, err := s.Load()
	if err != nil {
		return Settings{}, err
	}
	fn(&current)
	if err := s.Save(current); err != nil {
		return Settings{}, err
	}
	return canonical(current), nil
}

func (s *Store) Validate(value Settings) error {
	err := s.validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate settings: %w", err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, fmt.Sprintf("invalid %s %q", fieldLabel(fieldError.StructField()), fieldError.Value()))
	}
	return errors.New(strings.Join(messages, "; "))
}

func (s *Store) withDefaults(value Settings) Settings {
	err := s.validate.Struct(value)
	var fieldErrors validator.ValidationErrors
	if err == nil || !errors.As(err, &fieldErrors) {
		return value
	}

	for _, fieldError := range fieldErrors {
		switch fieldError.StructField() {
		case "Region":
			value.Region = s.defaults.Region
		case "SchoolYear":
			value.SchoolYear = s.defaults.SchoolYear
		case "Source":
			value.Source = s.defaults.Source
		}
	}
	return value
}

func canonical(value Settings) Settings {
	if macro, ok := region.ParseMacro(value.Region); ok {
		value.Region = string(macro)
	}
	value.SchoolYear = strings.TrimSpace(value.SchoolYear)
	value.Source = strings.ToLower(strings.TrimSpace(value.Source))
	return value
}

func fieldLabel(field string) string {
	switch field {
	case "SchoolYear":
		return "school year"
	default:
		return strings.ToLower(field)
	}
}
