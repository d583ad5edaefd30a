package external

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mycok/webscout/search"
)

const (
	noTitle  = "No Title"
	noLink   = "No Link"
	noHost   = "No Host"
	noEngine = "no engine"
)

const outputSchemaURL = "webscout://search-output.schema.json"

const outputSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["results"],
  "properties": {
    "query": {"type": ["string", "null"]},
    "results": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "title": {"type": ["string", "null"]},
            "link": {"type": ["string", "null"]},
            "host": {"type": ["string", "null"]}
          }
        }
      }
    }
  }
}`

var outputSchema = mustCompileOutputSchema()

func mustCompileOutputSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(outputSchemaJSON)))
	if err != nil {
		panic(err)
	}

	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource(outputSchemaURL, doc); err != nil {
		panic(err)
	}

	return compiler.MustCompile(outputSchemaURL)
}

// output mirrors the document written by the search process. Results keeps
// the engines in document order.
type output struct {
	Query   string                                      `json:"query"`
	Results *orderedmap.OrderedMap[string, []rawResult] `json:"results"`
}

type rawResult struct {
	Title *string `json:"title"`
	Link  *string `json:"link"`
	Host  *string `json:"host"`
}

// readOutput loads and validates the output file at path and flattens its
// results in engine order.
func readOutput(path string) (string, []search.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: %s", ErrMissingOutput, path)
		}

		return "", nil, &ParseError{Path: path, Err: err}
	}

	return parseOutput(path, data)
}

func parseOutput(path string, data []byte) (string, []search.Result, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return "", nil, &ParseError{Path: path, Err: err}
	}
	if err = outputSchema.Validate(inst); err != nil {
		return "", nil, &ParseError{Path: path, Err: err}
	}

	var out output
	if err = json.Unmarshal(data, &out); err != nil {
		return "", nil, &ParseError{Path: path, Err: err}
	}

	return out.Query, flatten(out.Results), nil
}

// flatten lists every engine's results in document order. Score holds the
// 1-based arrival rank.
func flatten(results *orderedmap.OrderedMap[string, []rawResult]) []search.Result {
	if results == nil {
		return []search.Result{}
	}

	flat := make([]search.Result, 0, results.Len())
	for pair := results.Oldest(); pair != nil; pair = pair.Next() {
		engine := pair.Key
		if engine == "" {
			engine = noEngine
		}

		for _, r := range pair.Value {
			flat = append(flat, search.Result{
				Engine: engine,
				Title:  valueOr(r.Title, noTitle),
				Link:   valueOr(r.Link, noLink),
				Host:   valueOr(r.Host, noHost),
				Score:  float64(len(flat) + 1),
			})
		}
	}

	return flat
}

// dedupByLink keeps the first result for every link and renumbers the
// arrival ranks. Placeholder links are never collapsed.
func dedupByLink(results []search.Result) []search.Result {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]search.Result, 0, len(results))

	for _, r := range results {
		if r.Link != noLink {
			if _, dup := seen[r.Link]; dup {
				continue
			}
			seen[r.Link] = struct{}{}
		}

		r.Score = float64(len(deduped) + 1)
		deduped = append(deduped, r)
	}

	return deduped
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}

	return *v
}
