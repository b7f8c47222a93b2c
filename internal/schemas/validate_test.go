package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestWatchConfigSchema_ValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(watchConfigSchema), &v))
	assert.Equal(t, "object", v["type"])
}

func TestValidateConfig_Valid(t *testing.T) {
	doc := `{
		"targets": [{"name": "StoreX", "url": "https://x.example.com/new", "base_url": "https://x.example.com", "page_level_signals": true}],
		"thematic_keywords": ["naruto"],
		"ultra_rare_ceiling": 2500,
		"fetcher": "http"
	}`
	assert.NoError(t, ValidateConfig([]byte(doc)))
}

func TestValidateConfig_MissingTargetField(t *testing.T) {
	doc := `{"targets": [{"name": "StoreX", "url": "https://x.example.com/new"}]}`

	err := ValidateConfig([]byte(doc))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "base_url")
}

func TestValidateConfig_WrongType(t *testing.T) {
	err := ValidateConfig([]byte(`{"ultra_rare_ceiling": "lots"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestValidateConfig_UnknownField(t *testing.T) {
	err := ValidateConfig([]byte(`{"webhook": "https://example.com"}`))
	require.Error(t, err)
}

func TestValidateConfig_UnknownFetcher(t *testing.T) {
	err := ValidateConfig([]byte(`{"fetcher": "curl"}`))
	require.Error(t, err)
}

func TestValidateConfig_MalformedDocument(t *testing.T) {
	err := ValidateConfig([]byte(`{not json`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidate_FieldErrors(t *testing.T) {
	schema := gojsonschema.NewStringLoader(`{"type": "object", "required": ["a"]}`)

	assert.NoError(t, validate("inline", schema, gojsonschema.NewStringLoader(`{"a": 1}`)))

	err := validate("inline", schema, gojsonschema.NewStringLoader(`{}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Errors)
}
