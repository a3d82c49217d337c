package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/panel-product-bot/internal/config"
	"github.com/futig/panel-product-bot/internal/entity"
)

const mib = 1024 * 1024

func TestValidateSiteURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "https://panel.example.com", want: "https://panel.example.com"},
		{name: "trailing slashes trimmed", input: " https://panel.example.com// ", want: "https://panel.example.com"},
		{name: "empty", input: "  ", wantErr: entity.ErrMissingField},
		{name: "insecure scheme", input: "http://panel.example.com", wantErr: entity.ErrInvalidFormat},
		{name: "no host", input: "https://", wantErr: entity.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSiteURL(tt.input)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr bool
	}{
		{input: "250,000", want: 250000},
		{input: "9999", want: 9999},
		{input: " 1 200 ", want: 1200},
		{input: "0", want: 0},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
		{input: "99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, entity.ErrInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategoryID(t *testing.T) {
	id, err := ParseCategoryID(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)

	_, err = ParseCategoryID("-3")
	assert.Error(t, err)
	_, err = ParseCategoryID("three")
	assert.Error(t, err)
	_, err = ParseCategoryID("")
	assert.True(t, errors.Is(err, entity.ErrMissingField))
}

func TestValidateProductName(t *testing.T) {
	name, err := ValidateProductName("  Widget ")
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)

	_, err = ValidateProductName(" \n ")
	assert.True(t, errors.Is(err, entity.ErrMissingField))
}

func TestValidateCredentials(t *testing.T) {
	token, err := ValidateToken(" abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ValidateToken("abc 123")
	assert.Error(t, err)

	_, err = ValidateUsername("")
	assert.Error(t, err)

	password, err := ValidatePassword(" p@ss ")
	require.NoError(t, err)
	assert.Equal(t, " p@ss ", password)
}

func newImageValidator() *ImageValidator {
	return NewImageValidator(config.ImageUploadConfig{
		MaxFileSize:       2 * mib,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "webp"},
	})
}

func TestImageValidator(t *testing.T) {
	v := newImageValidator()

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{name: "1 MiB png accepted", filename: "photo.png", size: 1 * mib},
		{name: "exactly the limit", filename: "photo.JPG", size: 2 * mib},
		{name: "3 MiB rejected", filename: "photo.jpg", size: 3 * mib, wantErr: entity.ErrFileTooLarge},
		{name: "bmp rejected", filename: "photo.bmp", size: 1024, wantErr: entity.ErrInvalidExtension},
		{name: "no extension", filename: "photo", size: 1024, wantErr: entity.ErrInvalidExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.filename, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestImageValidator_AllowedList(t *testing.T) {
	v := NewImageValidator(config.ImageUploadConfig{MaxFileSize: 1, AllowedExtensions: []string{".PNG", "jpg", "png"}})
	assert.Equal(t, "png, jpg", v.AllowedList())
}
