package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSource/internal/application/discovery"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

type searchOptions struct {
	name           string
	cas            string
	limit          int
	exclude        []string
	only           []string
	maxCandidates  int
	workers        int
	rerank         string
	skipValidation bool
	outFile        string
}

// NewSearchCmd returns the search command.
func NewSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find suppliers of a chemical",
		Long: "Search the web for a chemical name and CAS number and print the ranked\n" +
			"suppliers. Requires a search provider API key (SERPAPI_KEY).",
		Example: "  chemsource search --name Eucalyptol --cas 470-82-6 --exclude US,CN\n" +
			"  chemsource search --name Acetone --cas 67-64-1 --only DE -o json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "chemical name (required)")
	f.StringVar(&opts.cas, "cas", "", "CAS registry number (required)")
	f.IntVar(&opts.limit, "limit", 0, "maximum suppliers to return, 1-50 (default from config)")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "countries to exclude, names or codes (e.g. US,CN)")
	f.StringSliceVar(&opts.only, "only", nil, "only keep these countries (e.g. DE)")
	f.IntVar(&opts.maxCandidates, "max-candidates", 0, "maximum candidate pages to visit (default from config)")
	f.IntVar(&opts.workers, "workers", 0, "concurrent page extractions (default from config)")
	f.StringVar(&opts.rerank, "rerank", "", "relevance strategy: auto, remote, local")
	f.BoolVar(&opts.skipValidation, "skip-validation", false, "accept a CAS number with an invalid check digit")
	f.StringVar(&opts.outFile, "out", "", "write the result to this file instead of stdout")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("cas")
	cmd.MarkFlagsMutuallyExclusive("exclude", "only")

	return cmd
}

func (o *searchOptions) request() discovery.Request {
	return discovery.Request{
		ChemicalName:      o.name,
		CAS:               o.cas,
		Limit:             o.limit,
		MaxCandidates:     o.maxCandidates,
		MaxWorkers:        o.workers,
		ExcludedCountries: parseCountries(o.exclude),
		AllowedCountries:  parseCountries(o.only),
		Strategy:          o.rerank,
		SkipValidation:    o.skipValidation,
	}
}

func runSearch(cmd *cobra.Command, opts *searchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	req := opts.request()
	if err := req.Validate(discovery.Limits{MaxLimit: cliCtx.Config.Pipeline.MaxLimit}); err != nil {
		return err
	}

	app, err := newApp(cmd, cliCtx)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	cliCtx.Logger.Info("starting supplier search",
		logging.String("chemical", req.ChemicalName),
		logging.String("cas", req.CAS))

	rs, err := app.Service.Search(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.outFile != "" {
		f, err := os.Create(opts.outFile)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "cannot create output file").WithDetail(opts.outFile)
		}
		defer f.Close()
		out = f
	}

	if cliCtx.OutputFormat == FormatTable {
		printSearchSummary(cmd.ErrOrStderr(), rs)
		if len(rs.Suppliers) == 0 {
			return nil
		}
	}
	if err := writeResult(out, cliCtx.OutputFormat, supplierTable{rs}); err != nil {
		return err
	}
	if opts.outFile != "" {
		PrintSuccess(cmd, fmt.Sprintf("wrote %d suppliers to %s", len(rs.Suppliers), opts.outFile))
	}
	return nil
}

func printSearchSummary(w io.Writer, rs *supplier.ResultSet) {
	bold := color.New(color.Bold).SprintFunc()
	if len(rs.Suppliers) == 0 {
		fmt.Fprintf(w, "%s No suppliers found for %s (%s) among %d candidates.\n",
			color.YellowString("!"), bold(rs.ChemicalName), rs.CAS, rs.Candidates)
		return
	}
	fmt.Fprintf(w, "%s %d suppliers for %s (%s) from %d candidates, %d with evidence\n",
		color.GreenString("✔"), len(rs.Suppliers), bold(rs.ChemicalName), rs.CAS, rs.Candidates, rs.Evidence)
}

// parseCountries splits comma separated flag values and drops blanks.
func parseCountries(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// supplierTable renders a ResultSet. JSON and YAML output encode the
// ResultSet itself.
type supplierTable struct {
	*supplier.ResultSet
}

func (t supplierTable) MarshalYAML() (interface{}, error) {
	return t.ResultSet, nil
}

func (t supplierTable) TableHeaders() []string {
	return []string{"#", "Supplier", "Country", "Confidence", "Relevance", "Email", "Website"}
}

func (t supplierTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t.Suppliers))
	for i, s := range t.Suppliers {
		email := s.ContactEmail
		if email != "" && s.EmailStatus == supplier.EmailGenerated {
			email += " (generated)"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncateString(s.SupplierName, 40),
			s.Country,
			formatScore(s.ConfidenceScore),
			formatScore(s.RelevanceScore),
			email,
			s.Website,
		})
	}
	return rows
}

//Personal.AI order the ending
