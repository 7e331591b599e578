// Package swagger serves the OpenAPI document of the /api/v1 surface and a
// Swagger UI that reads it.
package swagger

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"
)

// DocumentPath is where the router serves the document.
const DocumentPath = "/openapi.yml"

//go:embed openapi.yml
var document []byte

func Document() []byte {
	return document
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

func DocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(document)
	}
}

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(DocumentPath),
	)
}

// Undocumented lists "METHOD /path" for every route below the document's
// server URL that has no matching operation.
func Undocumented(doc *openapi3.T, routes chi.Routes) ([]string, error) {
	base := ""
	if len(doc.Servers) > 0 {
		base = strings.TrimSuffix(doc.Servers[0].URL, "/")
	}

	var missing []string
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, base+"/") {
			return nil
		}
		path := strings.TrimPrefix(route, base)
		if len(path) > 1 {
			path = strings.TrimSuffix(path, "/")
		}
		item := doc.Paths.Find(path)
		if item == nil || item.GetOperation(method) == nil {
			missing = append(missing, method+" "+route)
		}
		return nil
	})
	sort.Strings(missing)
	return missing, err
}
