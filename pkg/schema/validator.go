// Package schema validates manifest documents against the embedded JSON
// schemas before anything is written to disk or submitted.
package schema

import (
	"fmt"
	"os"
	"sync"

	"github.com/fulmenhq/manifold/internal/assets"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"` // file the document came from, when known
}

// registry caches compiled schemas by manifest kind for reuse
var (
	schemaRegistry map[manifest.Kind]*gojsonschema.Schema
	registryErr    error
	regMu          sync.RWMutex
	regOnce        sync.Once
)

func initRegistry() {
	sources := make(map[manifest.Kind][]byte, len(assets.Registry))
	for _, info := range assets.Registry {
		data, ok := assets.GetSchema(info.Path)
		if !ok {
			registryErr = fmt.Errorf("embedded schema missing: %s", info.Path)
			return
		}
		sources[manifest.Kind(info.Kind)] = data
	}
	schemaRegistry, registryErr = compileSchemas(sources)
}

// compileSchemas compiles one schema per manifest kind, failing on the
// first kind whose schema does not compile.
func compileSchemas(sources map[manifest.Kind][]byte) (map[manifest.Kind]*gojsonschema.Schema, error) {
	out := make(map[manifest.Kind]*gojsonschema.Schema, len(sources))
	for kind, data := range sources {
		sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", kind, err)
		}
		out[kind] = sch
	}
	return out, nil
}

func schemaFor(kind manifest.Kind) (*gojsonschema.Schema, error) {
	regOnce.Do(initRegistry)
	regMu.RLock()
	defer regMu.RUnlock()
	if registryErr != nil {
		return nil, registryErr
	}
	sch, ok := schemaRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("no schema registered for manifest kind %q", kind)
	}
	return sch, nil
}

// ValidateDocument validates one raw manifest document (YAML or JSON)
// against the schema for its declared kind.
func ValidateDocument(data []byte) (*Result, error) {
	kind, err := manifest.DetectKind(data)
	if err != nil {
		return nil, err
	}
	return validateAs(kind, data, "")
}

func validateAs(kind manifest.Kind, data []byte, source string) (*Result, error) {
	sch, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}

	// gojsonschema speaks JSON; YAML documents go through one decode.
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	res, err := sch.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating %s document: %w", kind, err)
	}

	out := &Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Path:    e.Field(),
			Message: e.Description(),
			Source:  source,
		})
	}
	return out, nil
}

// ValidateSet serializes every document in the set with the codec and
// validates each against its schema. All diagnostics are aggregated; the
// set is valid only if every document is.
func ValidateSet(s manifest.Set, codec manifest.Codec) (*Result, error) {
	type doc struct {
		kind manifest.Kind
		body any
	}
	var docs []doc
	if s.Singleton != nil {
		docs = append(docs, doc{manifest.KindSingleton, s.Singleton})
	} else {
		docs = append(docs,
			doc{manifest.KindVersion, s.Version},
			doc{manifest.KindInstaller, s.Installer},
			doc{manifest.KindDefaultLocale, s.DefaultLocale},
		)
		for _, l := range s.Locales {
			docs = append(docs, doc{manifest.KindLocale, l})
		}
	}

	agg := &Result{Valid: true}
	for _, d := range docs {
		data, err := codec.Marshal(d.body)
		if err != nil {
			return nil, fmt.Errorf("serializing %s document: %w", d.kind, err)
		}
		res, err := validateAs(d.kind, data, "")
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			agg.Valid = false
			agg.Errors = append(agg.Errors, res.Errors...)
		}
	}
	return agg, nil
}

// ValidateDir validates every manifest file found under dir.
func ValidateDir(dir string) (*Result, error) {
	paths, err := manifest.LocateManifests(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no manifest files found under %s", dir)
	}

	agg := &Result{Valid: true}
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 -- operator-supplied manifest path
		if err != nil {
			return nil, err
		}
		kind, err := manifest.DetectKind(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		res, err := validateAs(kind, data, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if !res.Valid {
			agg.Valid = false
			agg.Errors = append(agg.Errors, res.Errors...)
		}
	}
	return agg, nil
}
