package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/panel-product-bot/internal/config"
	"github.com/futig/panel-product-bot/internal/entity"
)

// ImageValidator validates product images before they are downloaded
type ImageValidator struct {
	maxFileSize int64
	allowed     map[string]bool
	order       []string
}

func NewImageValidator(cfg config.ImageUploadConfig) *ImageValidator {
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	order := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext == "" || allowed[ext] {
			continue
		}
		allowed[ext] = true
		order = append(order, ext)
	}

	return &ImageValidator{
		maxFileSize: cfg.MaxFileSize,
		allowed:     allowed,
		order:       order,
	}
}

// MaxFileSize returns the configured size limit in bytes.
func (v *ImageValidator) MaxFileSize() int64 {
	return v.maxFileSize
}

// Validate checks the declared size and the filename extension.
func (v *ImageValidator) Validate(filename string, size int64) error {
	if size > v.maxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, filename, size, v.maxFileSize)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !v.allowed[ext] {
		return fmt.Errorf("%w: .%s (allowed: %s)", entity.ErrInvalidExtension, ext, v.AllowedList())
	}

	return nil
}

// AllowedList returns the allowed extensions as a comma separated list.
func (v *ImageValidator) AllowedList() string {
	return strings.Join(v.order, ", ")
}
