package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
)

func listOrdersCommand(a *app) *cobra.Command {
	var (
		phase    string
		lateOnly bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list-orders",
		Short: "List service orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.OrderFilter{Limit: limit}
			if phase != "" {
				code, ok := domain.ParsePhaseCode(phase)
				if !ok {
					return fmt.Errorf("unknown phase %q", phase)
				}
				filter.Phase = &code
			}
			if lateOnly {
				filter.Late = &lateOnly
			}

			if err := a.connect(); err != nil {
				return err
			}
			orders, err := a.repos.ServiceOrder.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPHASE\tLATE\tEVENT\tTOTAL\tREMAINING")
			for _, o := range orders {
				code := string(o.Phase)
				if code == "" {
					code = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%.2f\t%.2f\n",
					o.ID, code, o.IsLate, o.EventDate.Format("2006-01-02"), o.TotalValue, o.RemainingPayment)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d order(s)\n", len(orders))
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "", "Phase code or display name (LATE lists late orders)")
	cmd.Flags().BoolVar(&lateOnly, "late", false, "Only late orders")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of orders")
	return cmd
}
