package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"legalaid-seeder/internal/export"
	"legalaid-seeder/internal/generator/builder"
	"legalaid-seeder/internal/models"
	builddata "legalaid-seeder/internal/workers/data/build-data"
	exportdata "legalaid-seeder/internal/workers/data/export-data"
	purgedata "legalaid-seeder/internal/workers/data/purge-data"
	buildusers "legalaid-seeder/internal/workers/users/build-users"
	purgetestusers "legalaid-seeder/internal/workers/users/purge-test-users"
	"legalaid-seeder/pkg/registry"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// listingFlags are shared by build and export.
type listingFlags struct {
	cases               int
	limitedAssistances  int
	translationRequests int
	interests           int
	kinds               []string
}

func (f *listingFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.cases, "cases", 0, "number of case listings")
	fs.IntVar(&f.limitedAssistances, "limited-assistances", 0, "number of limited-assistance listings")
	fs.IntVar(&f.translationRequests, "translation-requests", 0, "number of translation requests")
	fs.IntVar(&f.interests, "interests", 0, "number of interests to link")
	fs.StringSliceVar(&f.kinds, "kinds", nil, "listing tables interests may target (default: all)")
}

// parseKinds maps listing table names to a KindSet. No names means every
// kind.
func parseKinds(names []string) (*builder.KindSet, error) {
	if len(names) == 0 {
		return nil, nil
	}
	set := &builder.KindSet{}
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case models.KindCase.Table():
			set.Cases = true
		case models.KindLimitedAssistance.Table():
			set.LimitedAssistances = true
		case models.KindTranslationRequest.Table():
			set.TranslationRequests = true
		default:
			return nil, fmt.Errorf("unknown listing table %q", name)
		}
	}
	return set, nil
}

func (a *app) newBuildCmd() *cobra.Command {
	var (
		listing listingFlags
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate listings, profiles and interests for test_users and push them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := parseKinds(listing.kinds)
			if err != nil {
				return err
			}
			if err := a.requireBackend(); err != nil {
				return err
			}
			h, err := a.buildDataHandler(cmd.Context(), a.sinks())
			if err != nil {
				return err
			}
			output, err := h.Execute(cmd.Context(), &builddata.Input{
				NumCases:               listing.cases,
				NumLimitedAssistances:  listing.limitedAssistances,
				NumTranslationRequests: listing.translationRequests,
				NumInterests:           listing.interests,
				ListingTypes:           kinds,
				DryRun:                 dryRun,
			})
			if err != nil {
				return err
			}
			return a.print(output)
		},
	}
	listing.register(cmd.Flags())
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build and verify without writing")
	return cmd
}

func (a *app) newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every generated row and forget recorded legal-service codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := confirm(a.in, a.out, isInteractive(a.in), yes, purgedata.OperationID,
				"Delete all generated listings, profiles and interests?"); err != nil {
				return err
			}
			if err := a.requireBackend(); err != nil {
				return err
			}
			h, err := a.purgeDataHandler(cmd.Context(), a.sinks())
			if err != nil {
				return err
			}
			output, err := h.Execute(cmd.Context(), &purgedata.Input{Confirm: true})
			if err != nil {
				return err
			}
			return a.print(output)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the auth users generated data is attached to",
	}

	var count int
	create := &cobra.Command{
		Use:   "create",
		Short: "Create confirmed test users and record them in test_users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireBackend(); err != nil {
				return err
			}
			h, err := a.buildUsersHandler(a.sinks())
			if err != nil {
				return err
			}
			output, err := h.Execute(cmd.Context(), &buildusers.Input{NumUsers: count})
			if err != nil {
				return err
			}
			return a.print(output)
		},
	}
	create.Flags().IntVarP(&count, "count", "n", 5, "number of users to create")

	var yes bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every test user from auth and test_users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := confirm(a.in, a.out, isInteractive(a.in), yes, purgetestusers.OperationID,
				"Delete all test users?"); err != nil {
				return err
			}
			if err := a.requireBackend(); err != nil {
				return err
			}
			h, err := a.purgeTestUsersHandler(a.sinks())
			if err != nil {
				return err
			}
			output, err := h.Execute(cmd.Context(), &purgetestusers.Input{Confirm: true})
			if err != nil {
				return err
			}
			return a.print(output)
		},
	}
	purge.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(create, purge)
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	var (
		listing listingFlags
		users   int
		formats []string
		outDir  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a dataset offline and write it to files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := parseKinds(listing.kinds)
			if err != nil {
				return err
			}
			h, err := a.exportDataHandler()
			if err != nil {
				return err
			}
			output, err := h.Execute(cmd.Context(), &exportdata.Input{
				NumCases:               listing.cases,
				NumLimitedAssistances:  listing.limitedAssistances,
				NumTranslationRequests: listing.translationRequests,
				NumInterests:           listing.interests,
				NumUsers:               users,
				ListingTypes:           kinds,
				Formats:                formats,
				OutputDir:              outDir,
			})
			if err != nil {
				return err
			}
			return a.print(output)
		},
	}
	listing.register(cmd.Flags())
	cmd.Flags().IntVar(&users, "users", 0, "number of synthesized users (default: export.num_users)")
	cmd.Flags().StringSliceVar(&formats, "format", nil,
		fmt.Sprintf("output formats, any of %s (default: export.formats)", strings.Join(export.Formats, ", ")))
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: export.output_dir)")
	return cmd
}

func (a *app) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <output.json>",
		Short: "Check the cross-table invariants of an exported dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ds, err := export.ReadJSON(args[0])
			if err != nil {
				return err
			}
			if err := ds.Verify(); err != nil {
				return err
			}
			return a.print(map[string]interface{}{
				"message": "Dataset is consistent",
				"counts":  ds.Counts(),
			})
		},
	}
}

func (a *app) newOperationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Inspect the operation registry",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every operation with its task type and route",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			reg, err := registry.Default()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTASK TYPE\tPATH\tTIMEOUT\tDESTRUCTIVE")
			for _, op := range reg.Operations {
				path := op.Path
				if path == "" {
					path = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", op.ID, op.TaskType, path, op.TimeoutDuration(), op.Destructive)
			}
			return w.Flush()
		},
	}, &cobra.Command{
		Use:   "validate [registry.json]",
		Short: "Check a registry file, or the built-in registry, for consistency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reg, err := registry.Default()
			if len(args) == 1 {
				reg, err = registry.LoadRegistry(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Check(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(a.out, "Registry validation passed (%d operations).\n", len(reg.Operations))
			return nil
		},
	})
	return cmd
}
