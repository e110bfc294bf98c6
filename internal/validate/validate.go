// Package validate checks inbound JSON payloads against embedded schemas.
package validate

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names an embedded payload schema.
type Schema string

const (
	Submit      Schema = "submit"
	EmailReport Schema = "email_report"
	SEOKeywords Schema = "seo_keywords"
	SEORankings Schema = "seo_rankings"
	SEOVolumes  Schema = "seo_volumes"
)

//go:embed schemas/*.json
var files embed.FS

var compiled = sync.OnceValues(func() (map[Schema]*gojsonschema.Schema, error) {
	out := make(map[Schema]*gojsonschema.Schema)
	for _, s := range []Schema{Submit, EmailReport, SEOKeywords, SEORankings, SEOVolumes} {
		raw, err := files.ReadFile("schemas/" + string(s) + ".json")
		if err != nil {
			return nil, eris.Wrapf(err, "validate: read schema %s", s)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, eris.Wrapf(err, "validate: compile schema %s", s)
		}
		out[s] = schema
	}
	return out, nil
})

// Error lists every way a payload violates its schema.
type Error struct {
	Schema   Schema
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validate: %s: %s", e.Schema, strings.Join(e.Problems, "; "))
}

// Load compiles all schemas, surfacing a broken schema at startup.
func Load() error {
	_, err := compiled()
	return err
}

// Validate checks body against the named schema. Malformed JSON and schema
// violations both yield an *Error.
func Validate(s Schema, body []byte) error {
	schemas, err := compiled()
	if err != nil {
		return err
	}
	schema, ok := schemas[s]
	if !ok {
		return eris.Errorf("validate: unknown schema %q", s)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &Error{Schema: s, Problems: []string{"malformed JSON"}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	sort.Strings(problems)
	return &Error{Schema: s, Problems: problems}
}
