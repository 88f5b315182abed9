package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/track87/chaos-mesh-archive/sdk"
	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

var namespace string

func parseKind(s string) (kind.Kind, error) {
	k, ok := kind.Parse(s)
	if !ok {
		return "", errors.Errorf("unknown experiment kind %q", s)
	}
	return k, nil
}

// resolveNamespace prefers the --namespace flag over the configured namespace.
func resolveNamespace() string {
	if namespace != "" {
		return namespace
	}
	return cfg.Namespace
}

func newClient() (sdk.Client, error) {
	return sdk.NewClient(sdk.WithNamespace(resolveNamespace()), sdk.WithLogger(log.WithName("sdk")))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var archiveCmd = &cobra.Command{
	Use:   "archive KIND NAME",
	Short: "Print the archive detail of a finished experiment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := parseKind(args[0])
		if err != nil {
			return err
		}
		cli, err := newClient()
		if err != nil {
			return err
		}
		ns := resolveNamespace()

		detail, err := cli.ArchiveExperiment(cmd.Context(), ns, args[1], k)
		if err != nil {
			return errors.Wrapf(err, "archive %s %s/%s", k, ns, args[1])
		}
		return printJSON(detail)
	},
}

var archivesCmd = &cobra.Command{
	Use:   "archives KIND",
	Short: "List archives of finished experiments of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := parseKind(args[0])
		if err != nil {
			return err
		}
		r, err := cfg.Resolver()
		if err != nil {
			return err
		}
		cli, err := newClient()
		if err != nil {
			return err
		}

		archives, err := cli.ListArchives(cmd.Context(), k)
		if err != nil {
			return err
		}
		if output == "json" {
			decorated := make([]sdk.DecoratedArchive, 0, len(archives))
			for _, a := range archives {
				decorated = append(decorated, a.Decorate(r, cfg.IconSize))
			}
			return printJSON(decorated)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAMESPACE\tNAME\tKIND\tSTART\tFINISH\tDURATION")
		for _, a := range archives {
			label := string(a.Kind)
			if d := a.Decorate(r, cfg.IconSize); d.Label != nil {
				label = *d.Label
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.Namespace, a.Name, label, a.StartTime, a.FinishTime, a.Duration())
		}
		return w.Flush()
	},
}

func init() {
	for _, cmd := range []*cobra.Command{archiveCmd, archivesCmd} {
		cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "experiment namespace (defaults to the configured namespace)")
	}

	rootCmd.AddCommand(archiveCmd, archivesCmd)
}
