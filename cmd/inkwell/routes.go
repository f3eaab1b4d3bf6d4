package main

import (
	"fmt"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inkwell-news/inkwell/internal/config"
	httpapp "github.com/inkwell-news/inkwell/internal/http"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print generated documentation for the routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Building the router touches no dependency, so nil store and
			// verifier are fine here.
			server := httpapp.NewServer(nil, nil, config.Config{}, zap.NewNop().Sugar())
			fmt.Println(docgen.MarkdownRoutesDoc(server.Routes(), docgen.MarkdownOpts{
				ProjectPath: "github.com/inkwell-news/inkwell",
				Intro:       "Inkwell API routes.",
			}))
			return nil
		},
	}
}
