package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

// pageExport is the file format of export and import
type pageExport struct {
	Username string                 `json:"username"`
	Profile  *domain.Profile        `json:"profile"`
	Groups   []domain.Group         `json:"groups"`
	Links    []domain.Link          `json:"links"`
	Timeline []domain.TimelineEvent `json:"timeline"`
}

func newExportCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an owner's page as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()
			return exportPage(cmd.Context(), repo, username, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "owner to export")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var username, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load an exported page into an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := importPage(cmd.Context(), repo, username, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "owner receiving the import")
	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func lookupOwner(ctx context.Context, repo ports.UserRepository, username string) (*domain.User, error) {
	u, err := repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	return u, nil
}

func exportPage(ctx context.Context, repo ports.Repository, username string, w io.Writer) error {
	owner, err := lookupOwner(ctx, repo, username)
	if err != nil {
		return err
	}

	out := pageExport{Username: owner.Username}
	if out.Profile, err = repo.GetProfile(ctx, owner.ID); err != nil {
		return fmt.Errorf("export profile: %w", err)
	}
	if out.Groups, err = repo.ListGroups(ctx, owner.ID); err != nil {
		return fmt.Errorf("export groups: %w", err)
	}
	if out.Links, err = repo.Dump(ctx, owner.ID); err != nil {
		return fmt.Errorf("export links: %w", err)
	}
	if out.Timeline, err = repo.ListTimelineEvents(ctx, owner.ID); err != nil {
		return fmt.Errorf("export timeline: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// importPage copies an export into username's account. Rows whose id or
// group name already exists are skipped. It returns the number of rows written.
func importPage(ctx context.Context, repo ports.Repository, username string, r io.Reader) (int, error) {
	var in pageExport
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}
	owner, err := lookupOwner(ctx, repo, username)
	if err != nil {
		return 0, err
	}

	count := 0
	if in.Profile != nil {
		p := *in.Profile
		p.UserID = owner.ID
		if err := repo.UpdateProfile(ctx, &p); err != nil {
			return count, fmt.Errorf("import profile: %w", err)
		}
		count++
	}

	for _, g := range in.Groups {
		existing, err := repo.GetGroupByName(ctx, owner.ID, g.Name)
		if err != nil {
			return count, err
		}
		if existing != nil {
			continue
		}
		g.OwnerID = owner.ID
		if err := repo.CreateGroup(ctx, &g); err != nil {
			return count, fmt.Errorf("import group %q: %w", g.Name, err)
		}
		count++
	}

	// Prepending from the last link keeps the exported order on top
	links := slices.Clone(in.Links)
	slices.SortStableFunc(links, func(a, b domain.Link) int { return a.Order - b.Order })
	for i := len(links) - 1; i >= 0; i-- {
		l := links[i]
		existing, err := repo.GetLinkByID(ctx, l.ID)
		if err != nil {
			return count, err
		}
		if existing != nil {
			continue
		}
		l.OwnerID = owner.ID
		if err := repo.PrependLink(ctx, &l); err != nil {
			return count, fmt.Errorf("import link %s: %w", l.ID, err)
		}
		count++
	}

	for _, e := range in.Timeline {
		existing, err := repo.GetTimelineEvent(ctx, owner.ID, e.ID)
		if err != nil {
			return count, err
		}
		if existing != nil {
			continue
		}
		e.OwnerID = owner.ID
		if err := repo.CreateTimelineEvent(ctx, &e); err != nil {
			return count, fmt.Errorf("import timeline event %s: %w", e.ID, err)
		}
		count++
	}
	return count, nil
}
