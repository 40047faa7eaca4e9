package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/service"
)

func seedPhasesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-phases",
		Short: "Create every known phase that is not configured yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			registry := service.NewPhaseRegistry(a.repos.Phase, a.logger)
			for _, code := range domain.AllPhaseCodes {
				phase, err := registry.GetOrCreate(cmd.Context(), code, nil)
				if err != nil {
					return fmt.Errorf("seed %s: %w", code, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-22s %s\n", phase.Code, phase.Name, phase.ID)
			}
			return nil
		},
	}
}

func advancePhasesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance-phases",
		Short: "Run the lateness sweep once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			registry := service.NewPhaseRegistry(a.repos.Phase, a.logger)
			lifecycle := service.NewOrderLifecycle(a.repos, registry, service.NewItemComposer(a.repos, a.logger), a.logger,
				service.WithLocation(a.cfg.Location))

			result, err := lifecycle.AdvancePhases(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d, flagged late %d, cleared %d\n",
				result.Checked, result.Flagged, result.Cleared)
			return nil
		},
	}
}
