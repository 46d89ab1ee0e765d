// Package config loads camera calibration overrides from JSON or YAML files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pointprint/aim"
)

// maxFileSize caps calibration files at 1MB
const maxFileSize = 1 * 1024 * 1024

// File is the on-disk calibration. Omitted fields keep their defaults.
type File struct {
	CameraX     *float64 `json:"camera_x,omitempty" yaml:"camera_x,omitempty"`
	CameraY     *float64 `json:"camera_y,omitempty" yaml:"camera_y,omitempty"`
	BedWidth    *float64 `json:"bed_width,omitempty" yaml:"bed_width,omitempty"`
	BedDepth    *float64 `json:"bed_depth,omitempty" yaml:"bed_depth,omitempty"`
	ServoRange  *int     `json:"servo_range,omitempty" yaml:"servo_range,omitempty"`
	ServoName   *string  `json:"servo_name,omitempty" yaml:"servo_name,omitempty"`
	CenterAngle *float64 `json:"servo_center_angle,omitempty" yaml:"servo_center_angle,omitempty"`
	Invert      *bool    `json:"invert_servo,omitempty" yaml:"invert_servo,omitempty"`
}

// Load reads a calibration file and applies it over aim.DefaultCalibration.
// The format follows the extension: .json, .yaml or .yml.
func Load(path string) (aim.Calibration, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return aim.Calibration{}, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return aim.Calibration{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return aim.Calibration{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return aim.Calibration{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var file *File
	if ext == ".json" {
		file, err = ParseJSON(data)
	} else {
		file, err = ParseYAML(data)
	}
	if err != nil {
		return aim.Calibration{}, fmt.Errorf("failed to parse %s: %w", cleanPath, err)
	}

	return file.Calibration()
}

// ParseJSON decodes a JSON calibration, rejecting unknown keys
func ParseJSON(data []byte) (*File, error) {
	var file File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ParseYAML decodes a YAML calibration, rejecting unknown keys
func ParseYAML(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		// An empty document leaves every default in place
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, err
	}
	return &file, nil
}

// Calibration applies the file over the defaults and validates the result
func (f *File) Calibration() (aim.Calibration, error) {
	calib := aim.DefaultCalibration()
	f.applyTo(&calib)
	if err := calib.Validate(); err != nil {
		return aim.Calibration{}, fmt.Errorf("invalid calibration: %w", err)
	}
	return calib, nil
}

func (f *File) applyTo(calib *aim.Calibration) {
	if f.CameraX != nil {
		calib.Camera.X = *f.CameraX
	}
	if f.CameraY != nil {
		calib.Camera.Y = *f.CameraY
	}
	if f.BedWidth != nil {
		calib.BedWidth = *f.BedWidth
	}
	if f.BedDepth != nil {
		calib.BedDepth = *f.BedDepth
	}
	if f.ServoRange != nil {
		calib.Range = aim.Range(*f.ServoRange)
		// A 90 degree servo has its own natural center
		if f.CenterAngle == nil {
			calib.CenterAngle = calib.Range.Degrees() / 2
		}
	}
	if f.ServoName != nil {
		calib.ServoName = *f.ServoName
	}
	if f.CenterAngle != nil {
		calib.CenterAngle = *f.CenterAngle
	}
	if f.Invert != nil {
		calib.Invert = *f.Invert
	}
}
