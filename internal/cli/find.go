package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/filescout/pkg/config"
	"github.com/sdejongh/filescout/pkg/criteria"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/output"
	"github.com/sdejongh/filescout/pkg/search"
)

// FindFlags holds find command flags
type FindFlags struct {
	LookIn        []string
	Mask          string
	NoSubdirs     bool
	Containing    string
	Regex         bool
	Hex           bool
	CaseSensitive bool
	WholeWords    bool
	EOL           string
	Criteria      criteriaFlags
	Refine        string
	From          string
	Save          string
	Profile       string
	SaveProfile   string
	ReadLimit     string
	MaxResults    int
	Output        string
}

var findFlags FindFlags

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	findFlags = FindFlags{}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find files by name, content, size, date and attributes",
		Long: `Search one or more directory trees for entries whose name matches a mask
and, optionally, whose content contains a literal text, a hex byte sequence
or a regular expression.

Results saved with --save can be narrowed later with --refine intersect
(keep what still matches) or --refine subtract (drop what matches).`,
		Example: `  filescout find --look-in "src;docs" --mask "*.go;*.md|*_test.go" --containing TODO
  filescout find --look-in /var/log --containing "err(or)?" --regex --modified-within 2d
  filescout find --refine intersect --from results.json --min-size 1MB`,
		RunE: runFind,
	}

	cmd.Flags().StringSliceVarP(&findFlags.LookIn, "look-in", "l", nil, "directories to search, separated by ';' (required unless refining)")
	cmd.Flags().StringVarP(&findFlags.Mask, "mask", "m", "", "name masks: \"*.c;*.h|test*\" (default from config)")
	cmd.Flags().BoolVar(&findFlags.NoSubdirs, "no-subdirs", false, "do not descend into subdirectories")
	cmd.Flags().StringVarP(&findFlags.Containing, "containing", "c", "", "search file content for this text")
	cmd.Flags().BoolVar(&findFlags.Regex, "regex", false, "treat --containing as a regular expression applied per line")
	cmd.Flags().BoolVar(&findFlags.Hex, "hex", false, "treat --containing as hex bytes, e.g. \"4d 5a 90\"")
	cmd.Flags().BoolVar(&findFlags.CaseSensitive, "case-sensitive", false, "match content case-sensitively")
	cmd.Flags().BoolVarP(&findFlags.WholeWords, "whole-words", "w", false, "match whole words only")
	cmd.Flags().StringVar(&findFlags.EOL, "eol", "", "line endings for --regex: any of cr,lf,crlf (default from config)")
	addCriteriaFlags(cmd, &findFlags.Criteria)
	cmd.Flags().StringVar(&findFlags.Refine, "refine", "", "refine previous results: intersect, subtract")
	cmd.Flags().StringVar(&findFlags.From, "from", "", "results file to refine (written by --save)")
	cmd.Flags().StringVar(&findFlags.Save, "save", "", "save the results to a file")
	cmd.Flags().StringVar(&findFlags.Profile, "profile", "", "start from a saved search profile")
	cmd.Flags().StringVar(&findFlags.SaveProfile, "save-profile", "", "store this search as a named profile")
	cmd.Flags().StringVar(&findFlags.ReadLimit, "read-limit", "", "limit content reads, e.g. \"50MB\" per second")
	cmd.Flags().IntVar(&findFlags.MaxResults, "max-results", 0, "fail once this many results are found (0 = config)")
	cmd.Flags().StringVarP(&findFlags.Output, "output", "o", "", "output format: human, json")

	cmd.MarkFlagsMutuallyExclusive("regex", "hex")
	cmd.MarkFlagsRequiredTogether("refine", "from")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalFlags(cfg)

	var profileCriteria *criteria.Criteria
	if findFlags.Profile != "" {
		if profileCriteria, err = applyProfile(cmd, cfg, findFlags.Profile); err != nil {
			return err
		}
	}
	if err := applyOutputFlags(cfg, findFlags.Output, findFlags.ReadLimit, findFlags.MaxResults); err != nil {
		return err
	}

	ecfg, err := buildFindConfig(cmd, cfg, profileCriteria)
	if err != nil {
		return err
	}

	if findFlags.SaveProfile != "" {
		if err := saveProfile(findFlags.SaveProfile, ecfg); err != nil {
			return err
		}
	}

	res, err := runSession(cmd, cfg, ecfg)
	if err != nil {
		return err
	}

	if findFlags.Save != "" {
		if err := output.WriteResultsFile(findFlags.Save, res.report, res.results); err != nil {
			return err
		}
	}

	return exitStatus(res.report)
}

// buildFindConfig turns the flags into a session configuration. Non-nil
// crit replaces the criteria flags.
func buildFindConfig(cmd *cobra.Command, cfg *config.Config, crit *criteria.Criteria) (*search.EngineConfig, error) {
	mode, err := models.ParseSearchMode(findFlags.Refine)
	if err != nil {
		return nil, err
	}
	if mode == models.ModeDuplicates {
		return nil, fmt.Errorf("--refine must be intersect or subtract; use the dupes command")
	}

	mask := findFlags.Mask
	if mask == "" {
		mask = cfg.Search.Mask
	}
	recurse := cfg.Search.Recurse && !findFlags.NoSubdirs

	ecfg := &search.EngineConfig{
		Mode:    mode,
		Ignore:  cfg.Ignore,
		Options: search.OptionsFromConfig(cfg),
	}

	if mode.IsRefine() {
		doc, err := output.ReadResultsFile(findFlags.From)
		if err != nil {
			return nil, err
		}
		ecfg.Previous = models.Files(doc.Results)

		lookIn := findFlags.LookIn
		if len(lookIn) == 0 {
			lookIn = doc.Roots
		}
		if len(lookIn) == 0 {
			lookIn = []string{"."}
		}
		if ecfg.Roots, err = parseRoots(lookIn, mask, recurse); err != nil {
			return nil, err
		}
	} else {
		if ecfg.Roots, err = parseRoots(findFlags.LookIn, mask, recurse); err != nil {
			return nil, err
		}
	}

	if findFlags.Containing != "" {
		if ecfg.Pattern, err = buildPattern(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if crit != nil {
		ecfg.Criteria = *crit
	} else if ecfg.Criteria, err = findFlags.Criteria.build(); err != nil {
		return nil, err
	}

	return ecfg, ecfg.Validate()
}

func buildPattern(cmd *cobra.Command, cfg *config.Config) (*models.GrepPattern, error) {
	p := &models.GrepPattern{
		Kind:          models.PatternLiteral,
		Text:          findFlags.Containing,
		CaseSensitive: findFlags.CaseSensitive,
		WholeWords:    findFlags.WholeWords,
		LineEndings:   cfg.Search.LineEndings,
	}
	if !cmd.Flags().Changed("case-sensitive") {
		p.CaseSensitive = p.CaseSensitive || cfg.Search.CaseSensitive
	}
	if !cmd.Flags().Changed("whole-words") {
		p.WholeWords = p.WholeWords || cfg.Search.WholeWords
	}

	switch {
	case findFlags.Regex:
		p.Kind = models.PatternRegex
	case findFlags.Hex:
		p.Kind = models.PatternHex
	}

	if findFlags.EOL != "" {
		eol, err := models.ParseLineEndings(findFlags.EOL)
		if err != nil {
			return nil, err
		}
		p.LineEndings = eol
	}

	return p, p.Validate()
}

// applyProfile copies a saved profile into the flags the user did not set.
// It returns the profile's criteria when no criteria flag was given.
func applyProfile(cmd *cobra.Command, cfg *config.Config, name string) (*criteria.Criteria, error) {
	p, ok := cfg.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}

	flags := cmd.Flags()
	if !flags.Changed("look-in") {
		findFlags.LookIn = p.LookIn
	}
	if !flags.Changed("mask") && p.Mask != "" {
		findFlags.Mask = p.Mask
	}
	if !flags.Changed("no-subdirs") {
		findFlags.NoSubdirs = p.NoSubdirs
	}
	if !flags.Changed("containing") && p.Containing != "" {
		findFlags.Containing = p.Containing
		findFlags.Regex = p.Kind == models.PatternRegex
		findFlags.Hex = p.Kind == models.PatternHex
	}
	if !flags.Changed("case-sensitive") {
		findFlags.CaseSensitive = p.CaseSensitive
	}
	if !flags.Changed("whole-words") {
		findFlags.WholeWords = p.WholeWords
	}
	if findFlags.Criteria.set() || p.Criteria.IsDefault() {
		return nil, nil
	}
	return &p.Criteria, nil
}

// saveProfile stores the search under name in the configuration file
func saveProfile(name string, ecfg *search.EngineConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	p := config.Profile{Criteria: ecfg.Criteria}
	for _, r := range ecfg.Roots {
		p.LookIn = append(p.LookIn, r.Path)
	}
	if len(ecfg.Roots) > 0 {
		p.Mask = ecfg.Roots[0].Mask
		p.NoSubdirs = !ecfg.Roots[0].Recurse
	}
	if ecfg.Pattern != nil {
		p.Containing = ecfg.Pattern.Text
		p.Kind = ecfg.Pattern.Kind
		p.CaseSensitive = ecfg.Pattern.CaseSensitive
		p.WholeWords = ecfg.Pattern.WholeWords
	}

	_, err = config.Update(path, func(c *config.Config) error {
		if c.Profiles == nil {
			c.Profiles = make(map[string]config.Profile)
		}
		c.Profiles[name] = p
		return nil
	})
	return err
}

// applyOutputFlags overrides output and performance settings
func applyOutputFlags(cfg *config.Config, format, readLimit string, maxResults int) error {
	if format != "" {
		cfg.Output.Format = format
	}
	if cfg.Output.Format == "json" {
		cfg.Output.Progress = false
	}
	if readLimit != "" {
		n, err := criteria.ParseSize(readLimit)
		if err != nil {
			return err
		}
		cfg.Performance.ReadLimit = n
	}
	if maxResults > 0 {
		cfg.Performance.MaxResults = maxResults
	}
	return nil
}
