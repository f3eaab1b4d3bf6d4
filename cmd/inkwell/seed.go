package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-news/inkwell/internal/config"
	"github.com/inkwell-news/inkwell/internal/model"
	"github.com/inkwell-news/inkwell/internal/store/sqlite"
)

// Articles are created and deleted outside the HTTP surface; seed is the
// local stand-in for that upstream process.
var fixtures = []model.Article{
	{
		Title:   "Learn React",
		Content: "React is one of the most popular JavaScript libraries for building user interfaces. It lets you compose complex UIs from small, isolated pieces of code called components.",
	},
	{
		Title:   "Learn Node",
		Content: "Node lets you run JavaScript outside the browser. Its event-driven, non-blocking I/O model makes it a good fit for small network services like this one.",
	},
	{
		Title:   "My Thoughts on Resumes",
		Content: "A resume is a snapshot, not a biography. Keep it to one page, lead with what you built, and let the interview carry the rest.",
	},
}

func seedCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture articles into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dbPath = cfg.DBPath
			}

			st, err := sqlite.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer st.Close()

			for i := range fixtures {
				article := fixtures[i]
				article.CreatedAt = time.Now()
				id, err := st.CreateArticle(cmd.Context(), &article)
				if err != nil {
					return fmt.Errorf("seed %q: %w", article.Title, err)
				}
				fmt.Printf("created article %d: %s\n", id, article.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default: from environment)")
	return cmd
}
