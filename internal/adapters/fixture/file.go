package fixture

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.yaml.in/yaml/v3"
)

const yamlIndent = 2

// Load reads, validates and converts a snapshot file.
func Load(ctx context.Context, path string) ([]Contest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}

	// Bare YAML timestamps arrive as time.Time; quoted ones (and JSON) as
	// strings.
	var doc Document
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
			Result:           &doc,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &doc, conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}

	contests, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return contests, nil
}

// Write renders contests as a YAML snapshot document.
func Write(w io.Writer, contests []Contest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(NewDocument(contests)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	return nil
}

// WriteFile writes contests to path, replacing any existing file.
func WriteFile(path string, contests []Contest) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteFile, cerr)
		}
	}()
	return Write(f, contests)
}
