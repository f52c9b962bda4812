// Package main provides a CLI tool to generate the OpenAPI specification for the elgatod API.
// This binary uses the shared route definitions with stub handlers to produce an accurate
// OpenAPI spec without requiring any real services or dependencies.
//
// Usage:
//
//	go run ./cmd/elgato-openapi > openapi.json
//	go run ./cmd/elgato-openapi -yaml > openapi.yaml
//	go run ./cmd/elgato-openapi -output openapi.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/butterflysky/elgato-keylight/internal/http/routes"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
)

// buildSpec registers every route with stub handlers and returns the
// resulting document.
func buildSpec(baseURL string) *huma.OpenAPI {
	// A minimal chi router; no requests are served.
	router := chi.NewRouter()
	api := humachi.New(router, routes.NewHumaConfig(version, baseURL))
	routes.Register(api, routes.StubHandlers())
	return api.OpenAPI()
}

// marshalSpec encodes spec as indented JSON or YAML.
func marshalSpec(spec *huma.OpenAPI, asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(spec)
	}
	return json.MarshalIndent(spec, "", "  ")
}

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := flag.String("base-url", "", "Base URL for the API server")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	data, err := marshalSpec(buildSpec(*baseURL), *outputYAML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling OpenAPI spec: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "OpenAPI spec written to %s\n", *outputFile)
	} else {
		fmt.Print(string(data))
	}
}
