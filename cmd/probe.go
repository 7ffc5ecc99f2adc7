package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"statuscheck-go/status"
)

var probeCmd = &cobra.Command{
	Use:       "probe [execution]",
	Short:     "Check that the site's pages are reachable",
	ValidArgs: []string{"e2s1", "e2s4", "e2s5"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prober := newProber(cfg, logger)
		targets := cfg.Targets()

		var probes []status.TargetProbe
		if len(args) == 1 {
			execution := strings.ToLower(args[0])
			target, ok := targets[execution]
			if !ok {
				return fmt.Errorf("unknown execution %q: use e2s1, e2s4, or e2s5", args[0])
			}
			probes = append(probes, status.TargetProbe{
				Execution:   execution,
				TargetURL:   target,
				ProbeResult: prober.Probe(cmd.Context(), target),
			})
		} else {
			for name, res := range prober.ProbeAll(cmd.Context(), targets) {
				probes = append(probes, status.TargetProbe{Execution: name, TargetURL: targets[name], ProbeResult: res})
			}
			sort.Slice(probes, func(i, j int) bool { return probes[i].Execution < probes[j].Execution })
		}

		for _, p := range probes {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s %dms\n",
				colorInfo(p.Execution), formatProbeStatus(p.ProbeResult), p.FinalURL, p.ElapsedMs)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if len(probes) == 1 {
			return enc.Encode(probes[0])
		}
		return enc.Encode(probes)
	},
}
