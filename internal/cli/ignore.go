package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sdejongh/filescout/pkg/config"
	"github.com/sdejongh/filescout/pkg/ignore"
)

// NewIgnoreCommand creates the ignore command
func NewIgnoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage the directories searches never enter",
		Long: `Edit the ignore list stored in the configuration file.

A rule starting with a drive letter or two separators ("C:\tmp", "\\host\share")
matches full paths, a rule starting with one separator ("\build") matches right
after the drive or share, and any other rule ("node_modules") matches anywhere
in a path. Rules are numbered from 1 as shown by "ignore list".`,
	}

	cmd.AddCommand(newIgnoreListCommand())
	cmd.AddCommand(newIgnoreAddCommand())
	cmd.AddCommand(newIgnoreRemoveCommand())
	cmd.AddCommand(newIgnoreToggleCommand("enable", true))
	cmd.AddCommand(newIgnoreToggleCommand("disable", false))
	cmd.AddCommand(newIgnoreMoveCommand())
	cmd.AddCommand(newIgnoreResetCommand())

	return cmd
}

func newIgnoreListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the ignore rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printRules(cmd, cfg.Ignore)
			return nil
		},
	}
}

func newIgnoreAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add PATH",
		Short: "Add a rule, or enable the rule already naming PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var added bool
			cfg, err := updateRules(func(l *ignore.List) error {
				added = l.AddUnique(args[0])
				return nil
			})
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Rule already present, enabled: %s\n", args[0])
			}
			printRules(cmd, cfg.Ignore)
			return nil
		},
	}
}

func newIgnoreRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove N",
		Short: "Remove rule N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := ruleIndex(args[0])
			if err != nil {
				return err
			}
			cfg, err := updateRules(func(l *ignore.List) error {
				return l.Remove(i)
			})
			if err != nil {
				return err
			}
			printRules(cmd, cfg.Ignore)
			return nil
		},
	}
}

func newIgnoreToggleCommand(use string, enabled bool) *cobra.Command {
	short := "Disable rule N"
	if enabled {
		short = "Enable rule N"
	}
	return &cobra.Command{
		Use:   use + " N",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := ruleIndex(args[0])
			if err != nil {
				return err
			}
			cfg, err := updateRules(func(l *ignore.List) error {
				rules := l.Rules()
				if i >= len(rules) {
					return fmt.Errorf("rule %d does not exist (%d rules)", i+1, len(rules))
				}
				r := rules[i]
				r.Enabled = enabled
				return l.Set(i, r)
			})
			if err != nil {
				return err
			}
			printRules(cmd, cfg.Ignore)
			return nil
		},
	}
}

func newIgnoreMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move FROM TO",
		Short: "Move rule FROM to position TO",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := ruleIndex(args[0])
			if err != nil {
				return err
			}
			to, err := ruleIndex(args[1])
			if err != nil {
				return err
			}
			cfg, err := updateRules(func(l *ignore.List) error {
				return l.Move(from, to)
			})
			if err != nil {
				return err
			}
			printRules(cmd, cfg.Ignore)
			return nil
		},
	}
}

func newIgnoreResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := updateRules(func(l *ignore.List) error {
				l.Reset()
				return nil
			})
			if err != nil {
				return err
			}
			printRules(cmd, cfg.Ignore)
			return nil
		},
	}
}

// updateRules edits the ignore list of the configuration file under its lock
func updateRules(fn func(*ignore.List) error) (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return config.Update(path, func(cfg *config.Config) error {
		l := ignore.NewList(cfg.Ignore)
		if err := fn(l); err != nil {
			return err
		}
		cfg.Ignore = l.Rules()
		return nil
	})
}

// ruleIndex converts a 1-based rule number into an index
func ruleIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid rule number %q", arg)
	}
	return n - 1, nil
}

func printRules(cmd *cobra.Command, rules []ignore.Rule) {
	w := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintln(w, "No ignore rules.")
		return
	}
	for i, r := range rules {
		mark := " "
		if r.Enabled {
			mark = "x"
		}
		fmt.Fprintf(w, "%3d [%s] %-13s %s\n", i+1, mark, ignore.Classify(r.Path), r.Path)
	}
}
