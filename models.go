package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Link struct {
	Name string `koanf:"name" json:"name" validate:"required"`
	URL  string `koanf:"url" json:"url" validate:"required,url"`
}

type Social struct {
	URL  string `koanf:"url" json:"url" validate:"required,url"`
	Icon string `koanf:"icon" json:"icon" validate:"required"`
}

// Profile holds the fixed values written into the upstream template.
// Empty Title or BackgroundClass leaves the template's own value alone.
type Profile struct {
	Name            string `koanf:"name" validate:"required"`
	AvatarURL       string `koanf:"avatar_url" validate:"required,url"`
	Title           string `koanf:"title"`
	BackgroundClass string `koanf:"background_class"`
}

// Page is everything a single render needs. It is built once at startup
// and only read afterwards.
type Page struct {
	Profile Profile
	Links   []Link
	Social  []Social
}

var validate = validator.New()

func (p Page) Validate() error {
	if err := validate.Struct(p.Profile); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	for i, l := range p.Links {
		if err := validate.Struct(l); err != nil {
			return fmt.Errorf("invalid link #%d: %w", i, err)
		}
	}

	for i, s := range p.Social {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("invalid social #%d: %w", i, err)
		}
	}

	return nil
}
