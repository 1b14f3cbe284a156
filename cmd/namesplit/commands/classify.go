package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
	"github.com/kerem-kaynak/authorname/pkg/freqdb"
)

type classificationView struct {
	Role string `json:"role"`
	authorname.Classification
}

var (
	classifyJSON    bool
	classifySimilar int
)

var classifyCmd = &cobra.Command{
	Use:   "classify <token>...",
	Short: "Report the most likely role of single tokens",
	Long: `Report the most likely role of single tokens.

Examples:
  namesplit classify Thomas Smith
  namesplit classify --similar 5 Robbert   # Also list phonetic neighbours`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, closer, err := newParser(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		out := cmd.OutOrStdout()
		db, _ := p.Store().(*freqdb.Store)
		for _, token := range args {
			c := p.Classify(token)
			if classifyJSON {
				view := classificationView{Role: c.Role.String(), Classification: c}
				if err := writeJSON(out, view); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%-16s %-8s confidence=%.4f p_given=%.4f p_family=%.4f observations=%d\n",
					c.Token, c.Role, c.Confidence, c.PGiven, c.PFamily, c.Observations)
			}

			if classifySimilar > 0 && db != nil {
				similar, err := db.Similar(cmd.Context(), token, classifySimilar)
				if err != nil {
					return err
				}
				for _, m := range similar {
					fmt.Fprintf(out, "  ~ %-14s given=%d family=%d soundex=%s metaphone=%s\n",
						m.Token, m.Given, m.Family, m.Soundex, m.Metaphone)
				}
			}
		}
		return storeErr(p.Store())
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print one JSON object per token")
	classifyCmd.Flags().IntVar(&classifySimilar, "similar", 0, "List up to N tokens with the same Soundex or Metaphone code (database only)")
}
