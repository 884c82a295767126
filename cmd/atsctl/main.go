package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/hareesh182003/Interview-Agent/internal/bootstrap"
	"github.com/hareesh182003/Interview-Agent/internal/config"
	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
	"github.com/hareesh182003/Interview-Agent/internal/services"
)

const reindexBatchSize = 50

func main() {
	rootCmd := &cobra.Command{
		Use:   "atsctl",
		Short: "ATS Resume Analyzer admin tools",
	}

	rootCmd.AddCommand(
		newReplayPromotionsCmd(),
		newReindexCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withContainer(ctx context.Context, fn func(*bootstrap.Container) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	container, err := bootstrap.Build(ctx, config.Load())
	if err != nil {
		return err
	}
	defer container.Close()

	return fn(container)
}

func newReplayPromotionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay-promotions",
		Short: "Promote qualifying sessions that have no qualified candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				promoted, err := c.Qualification.ReplayPromotions(cmd.Context())
				log.Printf("✅ Promoted %d sessions\n", promoted)
				return err
			})
		},
	}
}

func newReindexCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push analysis sessions into the resume similarity index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				if c.Index == nil {
					return services.ErrIndexDisabled
				}

				if all {
					cleared, err := c.SessionRepo.ClearIndexed()
					if err != nil {
						return err
					}
					log.Printf("🔄 Cleared index markers on %d sessions\n", cleared)
				}

				indexed, err := reindex(cmd.Context(), c.SessionRepo, c.Index)
				log.Printf("✅ Indexed %d sessions\n", indexed)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "re-index every session, not only unindexed ones")
	return cmd
}

// reindex stops once a batch makes no progress so failing sessions are not
// retried forever.
func reindex(ctx context.Context, repo repositories.AnalysisSessionRepository, index services.IndexService) (int, error) {
	total := 0
	for {
		sessions, err := repo.FindUnindexed(reindexBatchSize)
		if err != nil {
			return total, err
		}
		if len(sessions) == 0 {
			return total, nil
		}

		progress := 0
		for _, session := range sessions {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			if err := index.IndexSession(ctx, session.ID); err != nil {
				log.Printf("❌ Failed to index session %s: %v\n", session.ID, err)
				continue
			}
			progress++
		}

		total += progress
		if progress == 0 {
			return total, errors.New("no sessions could be indexed")
		}
	}
}

func newExportCmd() *cobra.Command {
	var format, out, status string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export qualified candidates as csv or xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repositories.CandidateFilter{Limit: models.MaxCandidateResults}
			if status != "" {
				s := models.CandidateStatus(status)
				if !s.Valid() {
					return fmt.Errorf("invalid status %q", status)
				}
				filter.Status = &s
			}

			return withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				candidates, err := c.Candidates.List(filter)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}

				if err := c.Exports.Export(f, format, candidates); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}

				log.Printf("✅ Exported %d candidates to %s\n", len(candidates), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", services.ExportFormatCSV, "csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "qualified_candidates.csv", "output file")
	cmd.Flags().StringVar(&status, "status", "", "only export candidates with this status")
	return cmd
}
