package cli

import (
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSource/internal/config"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
)

// NewCountriesCmd lists the countries the classifier can emit.
func NewCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported country names and codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), cliCtx.OutputFormat, newCountryList())
		},
	}
}

// NewExamplesCmd lists the built-in example chemicals.
func NewExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List example chemicals to search for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), cliCtx.OutputFormat, exampleList(supplier.Examples()))
		},
	}
}

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), cliCtx.OutputFormat, currentBuildInfo())
		},
	}
}

// CountryEntry is one row of the countries listing.
type CountryEntry struct {
	Name  string   `json:"name" yaml:"name"`
	Codes []string `json:"codes,omitempty" yaml:"codes,omitempty"`
}

type countryList []CountryEntry

func newCountryList() countryList {
	byName := make(map[string][]string)
	for code, name := range supplier.CountryCodes() {
		byName[name] = append(byName[name], code)
	}
	names := supplier.Countries()
	out := make(countryList, 0, len(names))
	for _, name := range names {
		codes := byName[name]
		sort.Strings(codes)
		out = append(out, CountryEntry{Name: name, Codes: codes})
	}
	return out
}

func (l countryList) TableHeaders() []string { return []string{"Country", "Codes"} }

func (l countryList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{c.Name, strings.Join(c.Codes, ", ")})
	}
	return rows
}

type exampleList []supplier.Example

func (l exampleList) TableHeaders() []string { return []string{"Chemical", "CAS"} }

func (l exampleList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{e.Name, e.CAS})
	}
	return rows
}

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func currentBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   config.Version,
		Commit:    config.GitCommit,
		BuildDate: config.BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b BuildInfo) TableHeaders() []string {
	return []string{"Version", "Commit", "Built", "Go", "Platform"}
}

func (b BuildInfo) TableRows() [][]string {
	return [][]string{{b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform}}
}

//Personal.AI order the ending
