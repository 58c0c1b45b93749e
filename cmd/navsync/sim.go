package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navsync"
	"github.com/vango-dev/navsync/pkg/history"
	"github.com/vango-dev/navsync/pkg/transition"
	"github.com/vango-dev/navsync/pkg/urltree"
)

func simCmd() *cobra.Command {
	var (
		from     string
		to       string
		scenario string
		deferred bool
		replace  bool
		preserve []string
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Replay a scripted transition scenario",
		Long: `Replay one router transition against an in-memory navigation
surface and print the reconciliation trace.

Scenarios:
  success   The transition completes normally.
  cancel    A guard rejects the transition after the native navigation
            was issued; the reconciler rolls both sides back.
  error     The transition fails during activation; same rollback path.

Examples:
  navsync sim --from=/ --to=/docs
  navsync sim --to=/admin --scenario=cancel
  navsync sim --to=/search?q=go --deferred --preserve=sid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(from, to, scenario, deferred, replace, preserve)
		},
	}

	cmd.Flags().StringVar(&from, "from", "/", "Initial URL of the surface")
	cmd.Flags().StringVar(&to, "to", "/docs", "Destination URL of the transition")
	cmd.Flags().StringVar(&scenario, "scenario", "success", "Scenario: success, cancel or error")
	cmd.Flags().BoolVar(&deferred, "deferred", false, "Defer the URL commit until activation")
	cmd.Flags().BoolVar(&replace, "replace", false, "Request a replace instead of a push")
	cmd.Flags().StringSliceVar(&preserve, "preserve", nil, "Query parameters preserved across navigations")

	return cmd
}

func runSim(from, to, scenario string, deferred, replace bool, preserve []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	serializer := urltree.DefaultSerializer{}
	nav := history.NewMemoryNavigation(from, nil)

	opts := []navsync.Option{
		navsync.WithLogger(logger),
	}
	if deferred {
		opts = append(opts, navsync.WithCommitMode(navsync.CommitDeferred))
	}
	if len(preserve) > 0 {
		opts = append(opts, navsync.WithStrategy(urltree.PreserveQueryStrategy{Params: preserve}))
	}

	r, err := navsync.New(nav, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	off := r.RegisterNonRouterCurrentEntryChangeListener(func(url string, state any) {
		logger.Info("non-router entry change", "url", url, "state", state)
	})
	defer off()

	target, err := serializer.Parse(to)
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", to, err)
	}

	tr := transition.New(transition.TriggerImperative, target, transition.Extras{
		ReplaceURL: replace,
	})

	r.HandleRouterEvent(transition.Start{T: tr})

	tr.FinalURL = target
	r.HandleRouterEvent(transition.RoutesRecognized{T: tr})

	switch scenario {
	case "success":
		tr.TargetState = transition.RouterState{Root: &transition.StateNode{Route: to}}
		r.HandleRouterEvent(transition.PreActivation{T: tr})
		r.HandleRouterEvent(transition.End{T: tr})

	case "cancel":
		r.HandleRouterEvent(transition.Cancel{T: tr, Code: transition.CancelGuardRejected})

	case "error":
		tr.TargetState = transition.RouterState{Root: &transition.StateNode{Route: to}}
		r.HandleRouterEvent(transition.PreActivation{T: tr})
		r.HandleRouterEvent(transition.Error{T: tr, Err: fmt.Errorf("activation failed")})

	default:
		return fmt.Errorf("unknown scenario %q", scenario)
	}

	fmt.Println()
	fmt.Printf("transition settled: err=%v\n", tr.Handle.Err())
	fmt.Printf("current url tree:   %s\n", serializer.Serialize(r.CurrentUrlTree()))
	fmt.Printf("raw url tree:       %s\n", serializer.Serialize(r.RawUrlTree()))
	fmt.Println("history entries:")
	current := nav.CurrentEntry()
	for _, e := range nav.Entries() {
		marker := " "
		if e.ID == current.ID {
			marker = "*"
		}
		fmt.Printf("  %s %-24s id=%s key=%s\n", marker, e.URL, e.ID, e.Key)
	}
	return nil
}
