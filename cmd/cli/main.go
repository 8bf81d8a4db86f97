package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
)

type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "linkbio",
		Short:        "Maintenance and editing tools for link-in-bio pages",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Back up a page and restore it elsewhere
  linkbio export --username alice > alice.json
  linkbio import --username alice --file alice.json

  # Mint a session token for API scripts
  linkbio token --username alice

  # Drag link B onto link A through the API
  linkbio links move B A --server http://localhost:8080 --token $TOKEN
`),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
		},
	}

	cmd.AddCommand(
		newExportCmd(a),
		newImportCmd(a),
		newTokenCmd(a),
		newMoveCmd(a, "links", "Reorder links inside their group"),
		newMoveCmd(a, "groups", "Reorder groups"),
		newMoveCmd(a, "timeline", "Reorder timeline events"),
	)
	return cmd
}

func (a *app) openRepo() (*sqlite.SQLiteRepository, error) {
	repo, err := sqlite.NewSQLiteRepository(a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	return repo, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
