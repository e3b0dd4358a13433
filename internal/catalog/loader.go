package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ishos/storefront/pkg/enums"
)

const configBaseName = "config"

var contentExtensions = []string{".json", ".yaml", ".yml"}

// productEntry mirrors a product in a content file. Pointer flags let the
// loader tell "omitted" from "false".
type productEntry struct {
	Product
	Available *bool `json:"available"`
	Featured  *bool `json:"featured"`
}

func (e productEntry) toProduct(fileCategory enums.Category) Product {
	p := e.Product
	p.Available = e.Available == nil || *e.Available
	p.Featured = e.Featured != nil && *e.Featured
	if p.Category == "" {
		p.Category = fileCategory
	}
	return p
}

// Load reads the store config and one product file per category from dir.
// Files may be JSON or YAML.
func Load(dir string) (*Store, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS is Load over an arbitrary filesystem.
func LoadFS(fsys fs.FS) (*Store, error) {
	var cfg StoreConfig
	if err := decodeContent(fsys, configBaseName, &cfg); err != nil {
		return nil, err
	}

	var products []Product
	for _, category := range enums.Categories() {
		var entries []productEntry
		if err := decodeContent(fsys, category.String(), &entries); err != nil {
			return nil, err
		}
		for _, e := range entries {
			products = append(products, e.toProduct(category))
		}
	}

	store, err := New(cfg, products)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return store, nil
}

func decodeContent(fsys fs.FS, base string, dest any) error {
	for _, ext := range contentExtensions {
		name := base + ext
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if ext != ".json" {
			if data, err = yamlToJSON(data); err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
		}
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(dest); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("missing content file %s.{json,yaml,yml}", base)
}

// yamlToJSON lets YAML content share the JSON tags and the decimal
// decoding of the catalog types.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
