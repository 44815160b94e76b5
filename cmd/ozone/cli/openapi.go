package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leap-ai/ozone/internal/handler"
	"github.com/leap-ai/ozone/internal/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var (
		baseURL    string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Generate the OpenAPI specification",
		Long: `Generate the OpenAPI 3.1 specification for the Ozone public API:
the data gateway, authentication, key management, and site endpoints.`,
		Example: `  ozone openapi                          # print to stdout
  ozone openapi -o spec.json             # write to file
  ozone openapi --base-url https://api.leap.ai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpenAPI(baseURL, outputFile)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Server URL embedded in the spec")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write spec to file instead of stdout")

	return cmd
}

func runOpenAPI(baseURL, outputFile string) error {
	endpoints := handler.NewGateway(nil, nil).EndpointNames()
	doc := openapi.GenerateSpec(baseURL, endpoints)

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, jsonBytes, 0644); err != nil {
			return fmt.Errorf("write spec: %w", err)
		}
		fmt.Printf("Wrote OpenAPI spec to %s\n", outputFile)
		return nil
	}

	fmt.Println(string(jsonBytes))
	return nil
}
