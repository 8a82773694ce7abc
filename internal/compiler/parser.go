package compiler

import (
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/turning/internal/dto"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser decodes YAML model documents.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and decodes a model file.
func (p *Parser) ParseFile(path string) (*dto.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return p.Parse(data)
}

// Parse decodes a YAML document into a model. Unknown keys are errors.
func (p *Parser) Parse(data []byte) (*dto.Model, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}

	var model dto.Model
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &model,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToStateHook,
			stringToSliceHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &model, nil
}

var stateType = reflect.TypeOf(dto.State{})

// stringToStateHook accepts "page:home" for {name: page:home}.
func stringToStateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stateType {
		return data, nil
	}
	return map[string]any{"name": data}, nil
}

// stringToSliceHook accepts a single string where a list is expected.
func stringToSliceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	return []string{data.(string)}, nil
}
