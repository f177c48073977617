package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
)

// sampleQueries are run by --samples, keeping the top hit of each.
var sampleQueries = []string{
	"What is Buddy's backstory?",
	"Tell me about the Mission District",
	"What events are happening in November?",
	"What's Buddy's personality like?",
	"Tell me about outdoor activities in SF",
}

const (
	sampleTopK        = 2
	samplePreviewSize = 150
)

var (
	queryTopK    int
	queryJSON    bool
	querySamples bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the knowledge base",
	Long: `Retrieves the passages nearest to a query, ranked by cosine distance.

Each result shows its rank, source page and distance. Use --samples to run
a fixed set of test questions and show the best match for each.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages (default retriever.top_k)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().BoolVar(&querySamples, "samples", false, "run the built-in sample queries")
	rootCmd.AddCommand(queryCmd)
}

type passageJSON struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id"`
	Page     int     `json:"page"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

type queryResultJSON struct {
	Query    string        `json:"query"`
	TopK     int           `json:"top_k"`
	Passages []passageJSON `json:"passages"`
	Context  string        `json:"context"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if !querySamples && (len(args) == 0 || strings.TrimSpace(args[0]) == "") {
		return errors.New("a query is required (or use --samples)")
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	retriever, cleanup, err := openRetriever(ctx, s)
	if err != nil {
		return err
	}
	defer cleanup()

	if querySamples {
		return runSampleQueries(cmd, retriever)
	}

	topK := queryTopK
	if topK <= 0 {
		topK = retriever.TopK()
	}

	result, err := retriever.Lookup(ctx, args[0], topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, result, topK)
	}
	outputQueryText(cmd, result)
	return nil
}

func runSampleQueries(cmd *cobra.Command, retriever driving.RetrieverService) error {
	ctx := commandContext(cmd)
	for _, q := range sampleQueries {
		cmd.Printf("Q: %s\n", q)
		result, err := retriever.Lookup(ctx, q, sampleTopK)
		switch {
		case err != nil:
			cmd.Printf("   error: %v\n", err)
		case result.IsEmpty():
			cmd.Println("   no results")
		default:
			top := result.Passages[0]
			cmd.Printf("   [page %d, distance %.4f] %s\n", top.Page, top.Distance, domain.Preview(top.Text, samplePreviewSize))
		}
		cmd.Println()
	}
	return nil
}

func outputQueryJSON(cmd *cobra.Command, result *domain.Retrieval, topK int) error {
	out := queryResultJSON{
		Query:    result.Query,
		TopK:     topK,
		Passages: make([]passageJSON, 0, len(result.Passages)),
		Context:  result.Context(),
	}
	for i, p := range result.Passages {
		out.Passages = append(out.Passages, passageJSON{
			Rank:     i + 1,
			ID:       p.ID,
			Page:     p.Page,
			Distance: p.Distance,
			Text:     p.Text,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, result *domain.Retrieval) {
	cmd.Printf("Query: %s\n", result.Query)
	if result.IsEmpty() {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Found %d relevant chunks:\n\n", len(result.Passages))
	for i, p := range result.Passages {
		cmd.Printf("--- Result %d (Page %d, Distance: %.4f) ---\n", i+1, p.Page, p.Distance)
		cmd.Println(strings.TrimSpace(p.Text))
		cmd.Println()
	}
}
