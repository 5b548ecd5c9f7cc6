package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signup/internal/config"
	"github.com/vango-dev/signup/pkg/responses"
)

func codesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List response codes and their messages",
		Long: `List the effective response message table: the built-in
messages overlaid with messages.file and messages.s3 from signup.json.

Without a signup.json the built-in table is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), root.verbose)

			mc, err := messagesConfig(root.configPath)
			if err != nil {
				return err
			}
			table, err := loadTable(cmd.Context(), mc, nil, logger)
			if err != nil {
				return err
			}
			return printCodes(cmd, table)
		},
	}
}

// messagesConfig reads only the messages section, so codes works without a
// complete configuration.
func messagesConfig(path string) (config.MessagesConfig, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
		if err != nil {
			if _, statErr := os.Stat(config.ConfigFileName); os.IsNotExist(statErr) {
				return config.MessagesConfig{}, nil
			}
		}
	}
	if err != nil {
		return config.MessagesConfig{}, err
	}
	return cfg.Messages, nil
}

func printCodes(cmd *cobra.Command, table *responses.Table) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tMESSAGE")
	for _, code := range table.Codes() {
		msg, _ := table.Lookup(code)
		fmt.Fprintf(tw, "%s\t%s\n", code, msg)
	}
	return tw.Flush()
}
