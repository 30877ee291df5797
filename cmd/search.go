package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfwise/shelfwise/internal/search"
)

var (
	flagSearchMode      string
	flagSearchThreshold int
	flagSearchForce     bool
	flagSearchLimit     int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog by filename",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchMode, "mode", "", "Scoring mode: fuzzy or fast (default from config)")
	searchCmd.Flags().IntVar(&flagSearchThreshold, "threshold", 0, "Minimum fuzzy score 0-100 (default from config)")
	searchCmd.Flags().BoolVar(&flagSearchForce, "force", false, "Force a catalog rebuild before searching")
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 0, "Maximum number of results (0 = all)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := flagSearchMode
	if mode == "" {
		mode = cfg.SearchMode
	}
	threshold := flagSearchThreshold
	if threshold <= 0 {
		threshold = cfg.SimilarityThreshold
	}

	store := newStore(cfg)
	books, err := store.Books(flagSearchForce)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		printMiss("no ebook files in the catalog")
		return nil
	}

	query := strings.Join(args, " ")
	scorer := search.NewScorer(mode, threshold)
	results := search.Search(scorer, books, query)
	if flagSearchLimit > 0 && len(results) > flagSearchLimit {
		results = results[:flagSearchLimit]
	}

	fmt.Printf("\nshelfwise search %q (%s mode)\n\n", query, scorer.Mode())
	fmt.Printf("Results (%d found):\n", len(results))
	if len(results) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, r := range results {
		fmt.Fprintf(w, "  %d.\t[%3d]\t%s\t%.2f MB\n", i+1, r.Score, r.Book.Filename, r.Book.SizeMB)
		fmt.Fprintf(w, "  \t\t%s\n", r.Book.FullPath)
	}
	return w.Flush()
}
