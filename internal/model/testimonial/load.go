package testimonial

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinPoolSize is the smallest content pool that can fill the carousel.
const MinPoolSize = 3

var (
	ErrEmptyName     = errors.New("testimonial name is required")
	ErrDuplicateName = errors.New("duplicate testimonial name")
	ErrInvalidRating = errors.New("testimonial rating out of range")
	ErrPoolTooSmall  = errors.New("content pool too small")
)

type contentFile struct {
	Testimonials []Testimonial `yaml:"testimonials"`
}

// LoadFile reads a YAML content file of the form
//
//	testimonials:
//	  - name: ...
//	    text: ...
//	    imageUrl: ...
//	    rating: 5
func LoadFile(path string) ([]Testimonial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML content.
func Parse(data []byte) ([]Testimonial, error) {
	var file contentFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode content file: %w", err)
	}

	for i := range file.Testimonials {
		item := &file.Testimonials[i]
		item.Name = strings.TrimSpace(item.Name)
		item.Text = strings.TrimSpace(item.Text)
		item.ImageURL = strings.TrimSpace(item.ImageURL)
	}

	if err := Validate(file.Testimonials); err != nil {
		return nil, err
	}
	return file.Testimonials, nil
}

// Validate checks that items form a usable content pool.
func Validate(items []Testimonial) error {
	if len(items) < MinPoolSize {
		return fmt.Errorf("%w: have %d, need at least %d", ErrPoolTooSmall, len(items), MinPoolSize)
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.Name == "" {
			return fmt.Errorf("testimonial #%d: %w", i, ErrEmptyName)
		}
		if _, dup := seen[item.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, item.Name)
		}
		seen[item.Name] = struct{}{}
		if item.Rating < 0 || item.Rating > MaxRating {
			return fmt.Errorf("testimonial %q: %w: %d", item.Name, ErrInvalidRating, item.Rating)
		}
	}
	return nil
}
