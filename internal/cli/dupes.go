package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/output"
	"github.com/sdejongh/filescout/pkg/search"
)

// DupesFlags holds dupes command flags
type DupesFlags struct {
	LookIn    []string
	Mask      string
	NoSubdirs bool
	By        string
	Hash      string
	Criteria  criteriaFlags
	Save      string
	ReadLimit string
	Output    string
}

var dupesFlags DupesFlags

// NewDupesCommand creates the dupes command
func NewDupesCommand() *cobra.Command {
	dupesFlags = DupesFlags{}

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find duplicate files",
		Long: `Group files that share the same name, size or content.

Files are first grouped by name and/or size; only files with a partner are
hashed when content comparison is requested. Interrupting a content search
keeps the groups of the files hashed so far.`,
		Example: `  filescout dupes --look-in ~/Pictures --by size,content --hash xxhash
  filescout dupes --look-in "D:\;E:\" --by name,size --min-size 1MB`,
		RunE: runDupes,
	}

	cmd.Flags().StringSliceVarP(&dupesFlags.LookIn, "look-in", "l", nil, "directories to search, separated by ';' (required)")
	cmd.Flags().StringVarP(&dupesFlags.Mask, "mask", "m", "", "name masks (default from config)")
	cmd.Flags().BoolVar(&dupesFlags.NoSubdirs, "no-subdirs", false, "do not descend into subdirectories")
	cmd.Flags().StringVar(&dupesFlags.By, "by", "", "duplicate keys: name, size, content (default from config)")
	cmd.Flags().StringVar(&dupesFlags.Hash, "hash", "", "content hash: md5, xxhash (default from config)")
	addCriteriaFlags(cmd, &dupesFlags.Criteria)
	cmd.Flags().StringVar(&dupesFlags.Save, "save", "", "save the results to a file")
	cmd.Flags().StringVar(&dupesFlags.ReadLimit, "read-limit", "", "limit hashing reads, e.g. \"50MB\" per second")
	cmd.Flags().StringVarP(&dupesFlags.Output, "output", "o", "", "output format: human, json")

	return cmd
}

func runDupes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalFlags(cfg)

	if err := applyOutputFlags(cfg, dupesFlags.Output, dupesFlags.ReadLimit, 0); err != nil {
		return err
	}
	if dupesFlags.Hash != "" {
		cfg.Duplicates.Hash = dupesFlags.Hash
	}

	dup := cfg.Duplicates.DuplicateCriteria
	if dupesFlags.By != "" {
		if dup, err = models.ParseDuplicateCriteria(dupesFlags.By); err != nil {
			return err
		}
	}

	mask := dupesFlags.Mask
	if mask == "" {
		mask = cfg.Search.Mask
	}
	roots, err := parseRoots(dupesFlags.LookIn, mask, cfg.Search.Recurse && !dupesFlags.NoSubdirs)
	if err != nil {
		return err
	}

	crit, err := dupesFlags.Criteria.build()
	if err != nil {
		return err
	}

	ecfg := &search.EngineConfig{
		Mode:       models.ModeDuplicates,
		Roots:      roots,
		Ignore:     cfg.Ignore,
		Criteria:   crit,
		Duplicates: dup,
		Options:    search.OptionsFromConfig(cfg),
	}
	if err := ecfg.Validate(); err != nil {
		return err
	}

	res, err := runSession(cmd, cfg, ecfg)
	if err != nil {
		return err
	}

	if dupesFlags.Save != "" {
		if err := output.WriteResultsFile(dupesFlags.Save, res.report, res.results); err != nil {
			return err
		}
	}

	return exitStatus(res.report)
}
