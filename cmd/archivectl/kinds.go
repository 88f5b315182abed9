package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/track87/chaos-mesh-archive/sdk/bykind"
	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

var iconSize string

type kindRow struct {
	Kind  kind.Kind   `json:"kind"`
	Icon  bykind.Icon `json:"icon"`
	Key   string      `json:"key"`
	Label string      `json:"label"`
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List experiment kinds with their icon and label",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := cfg.Resolver()
		if err != nil {
			return err
		}
		size := cfg.IconSize
		if iconSize != "" {
			if size, err = bykind.ParseSize(iconSize); err != nil {
				return err
			}
		}

		rows := make([]kindRow, 0, len(kind.All()))
		for _, k := range kind.All() {
			icon, _ := r.Icon(k, size)
			label, _ := r.Label(k)
			text, _ := r.Text(k)
			rows = append(rows, kindRow{Kind: k, Icon: icon, Key: label.Key, Label: text})
		}

		if output == "json" {
			return printJSON(rows)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tICON\tSIZE\tLABEL")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Kind, row.Icon.Asset, row.Icon.Size, row.Label)
		}
		return w.Flush()
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the kind table against the chaos-mesh API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := kind.VerifyScheme(); err != nil {
			return err
		}
		if _, err := cfg.Resolver(); err != nil {
			return err
		}
		log.Info("kind table verified", "kinds", len(kind.All()), "locale", cfg.Locale)
		return nil
	},
}

func init() {
	kindsCmd.Flags().StringVar(&iconSize, "size", "", "icon size (small, large)")

	rootCmd.AddCommand(kindsCmd, verifyCmd)
}
