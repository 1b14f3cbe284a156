package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

var (
	parseJSON     bool
	explainFamily bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <given> <family>",
	Short: "Parse separate given-name and family-name fields",
	Long: `Parse separate given-name and family-name fields.

With no arguments, reads tab-separated "given<TAB>family" lines from stdin.

Examples:
  namesplit parse "Bryanne Brissian de Souza" "Langhi Júnior"
  namesplit parse --json "J.-B." "Da Silva"`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, closer, err := newParser(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			given, family := args[0], ""
			if len(args) == 2 {
				family = args[1]
			}
			return printName(out, p.Parse(given, family))
		}
		return eachLine(cmd.InOrStdin(), func(line string) error {
			given, family, _ := strings.Cut(line, "\t")
			return printName(out, p.Parse(given, family))
		})
	},
}

var authorCmd = &cobra.Command{
	Use:   "author <name>...",
	Short: "Parse undelimited author strings",
	Long: `Parse author strings such as "Smith, John" or "John Smith".

A comma marks "Family, Given". Otherwise each token's role comes from the
frequency table. With no arguments, reads one author per line from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, closer, err := newParser(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			for _, raw := range args {
				if err := printName(out, p.ParseAuthor(raw)); err != nil {
					return err
				}
			}
			return storeErr(p.Store())
		}
		err = eachLine(cmd.InOrStdin(), func(line string) error {
			return printName(out, p.ParseAuthor(line))
		})
		if err != nil {
			return err
		}
		return storeErr(p.Store())
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <field>",
	Short: "Show the filter decision for every token of a name field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, closer, err := newParser(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		mode := authorname.GivenMode
		if explainFamily {
			mode = authorname.FamilyMode
		}
		out := cmd.OutOrStdout()
		for _, d := range p.Explain(args[0], mode) {
			fmt.Fprintf(out, "%-20s %-9s %s\n", d.Token.Text, d.Role, d.Reason)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{parseCmd, authorCmd} {
		cmd.Flags().BoolVar(&parseJSON, "json", false, "Print one JSON object per name")
	}
	explainCmd.Flags().BoolVar(&explainFamily, "family", false, "Treat the field as a family name")
}

// nameView is the printed form of a ParsedName.
type nameView struct {
	Given      []string `json:"given"`
	Family     []string `json:"family"`
	Unresolved []string `json:"unresolved,omitempty"`
	Confidence float64  `json:"confidence"`
}

func printName(w io.Writer, name authorname.ParsedName) error {
	view := nameView{
		Given:      name.GivenNames(),
		Family:     name.FamilyNames(),
		Unresolved: authorname.ComponentTexts(name.Unresolved),
		Confidence: name.Confidence,
	}
	if parseJSON {
		return writeJSON(w, view)
	}
	_, err := fmt.Fprintf(w, "given=%q family=%q", strings.Join(view.Given, " "), strings.Join(view.Family, " "))
	if err != nil {
		return err
	}
	if len(view.Unresolved) > 0 {
		fmt.Fprintf(w, " unresolved=%q", strings.Join(view.Unresolved, " "))
	}
	_, err = fmt.Fprintf(w, " confidence=%.3f\n", view.Confidence)
	return err
}

func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "read stdin")
}
