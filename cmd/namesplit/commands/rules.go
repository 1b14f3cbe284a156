package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

var (
	rulesKind  string
	rulesGroup string
	rulesFile  string
)

// RulesCmd inspects and edits the lexical rule table.
var RulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and edit the lexical rule table",
	Long: `Inspect and edit the lexical rule table.

The effective table is the built-in one extended by rules.path. add and
remove edit the file named by --file (default rules.path).

Examples:
  namesplit rules stats
  namesplit rules contains "von der"
  namesplit rules list --kind suffix
  namesplit rules add --file my.yaml --kind particle --group spain "de los"`,
}

var rulesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rule table statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRules()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		source := "built-in"
		if cfg.Rules.Path != "" {
			source = "built-in + " + cfg.Rules.Path
		}
		fmt.Fprintf(out, "Rules:       %s\n", source)
		fmt.Fprintf(out, "Particles:   %d (longest %d words)\n", rules.Particles.Len(), rules.Particles.MaxWords())
		fmt.Fprintf(out, "Suffixes:    %d\n", rules.Suffixes.Len())
		fmt.Fprintf(out, "Short names: %d\n", rules.ShortNames.Len())

		groups := make([]string, 0, len(rules.Groups))
		for group := range rules.Groups {
			groups = append(groups, group)
		}
		sort.Strings(groups)
		for _, group := range groups {
			fmt.Fprintf(out, "  %-12s %s\n", group, strings.Join(rules.Groups[group], ", "))
		}
		return nil
	},
}

var rulesContainsCmd = &cobra.Command{
	Use:   "contains <text>",
	Short: "Check whether text is a particle, suffix or short name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRules()
		if err != nil {
			return err
		}
		text := args[0]
		var kinds []string
		if rules.IsParticle(text) {
			kinds = append(kinds, string(authorname.KindParticle))
		}
		if rules.IsSuffix(text) {
			kinds = append(kinds, string(authorname.KindSuffix))
		}
		if rules.IsShortName(text) {
			kinds = append(kinds, string(authorname.KindShortName))
		}
		if len(kinds) == 0 {
			return errors.Newf("%q is not in the rule table", text)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%q: %s\n", text, strings.Join(kinds, ", "))
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the normalized entries of one rule list",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := authorname.ParseRuleKind(rulesKind)
		if err != nil {
			return err
		}
		rules, err := loadRules()
		if err != nil {
			return err
		}
		lex := rules.ShortNames
		switch kind {
		case authorname.KindParticle:
			lex = rules.Particles
		case authorname.KindSuffix:
			lex = rules.Suffixes
		}
		for _, entry := range lex.Entries() {
			fmt.Fprintln(cmd.OutOrStdout(), entry)
		}
		return nil
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <entry>...",
	Short: "Add entries to a rule file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, kind, err := openRulesFile()
		if err != nil {
			return err
		}
		if err := f.Add(kind, rulesGroup, args...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d %s entries to %s\n", len(args), kind, rulesFilePath())
		return nil
	},
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <entry>...",
	Short: "Remove entries from a rule file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, kind, err := openRulesFile()
		if err != nil {
			return err
		}
		n, err := f.Remove(kind, args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s entries from %s\n", n, kind, rulesFilePath())
		return nil
	},
}

func rulesFilePath() string {
	if rulesFile != "" {
		return rulesFile
	}
	return cfg.Rules.Path
}

func openRulesFile() (*authorname.RuleFile, authorname.RuleKind, error) {
	kind, err := authorname.ParseRuleKind(rulesKind)
	if err != nil {
		return nil, "", err
	}
	path := rulesFilePath()
	if path == "" {
		return nil, "", errors.WithHint(errors.New("no rule file to edit"),
			"pass --file or set rules.path; the built-in table is read-only")
	}
	f, err := authorname.OpenRuleFile(path)
	return f, kind, err
}

func init() {
	RulesCmd.AddCommand(rulesStatsCmd)
	RulesCmd.AddCommand(rulesContainsCmd)
	RulesCmd.AddCommand(rulesListCmd)
	RulesCmd.AddCommand(rulesAddCmd)
	RulesCmd.AddCommand(rulesRemoveCmd)

	rulesListCmd.Flags().StringVar(&rulesKind, "kind", "particle", "Rule list: particle, suffix or short_name")
	for _, cmd := range []*cobra.Command{rulesAddCmd, rulesRemoveCmd} {
		cmd.Flags().StringVar(&rulesKind, "kind", "particle", "Rule list: particle, suffix or short_name")
		cmd.Flags().StringVar(&rulesFile, "file", "", "Rule file to edit (default rules.path)")
	}
	rulesAddCmd.Flags().StringVar(&rulesGroup, "group", "", "Particle group, e.g. spain (default custom)")
}
