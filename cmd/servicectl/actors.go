package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roupadegala/servicecontrol/internal/service"
)

func createActorCommand(a *app) *cobra.Command {
	var (
		name     string
		role     string
		personID string
	)

	cmd := &cobra.Command{
		Use:   "create-actor",
		Short: "Register an API actor and print its key",
		Long: `Register an API actor. The generated key is printed once and is
not stored in clear text, so keep it somewhere safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(); err != nil {
				return err
			}

			req := service.CreateActorRequest{Name: name, Role: role}
			if personID != "" {
				id, err := uuid.Parse(personID)
				if err != nil {
					return fmt.Errorf("invalid --person-id: %w", err)
				}
				req.PersonID = &id
			}

			created, err := service.NewActorService(a.repos, a.logger).Create(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Actor created\n")
			fmt.Fprintf(out, "  id:      %s\n", created.Actor.ID)
			fmt.Fprintf(out, "  name:    %s\n", created.Actor.Name)
			fmt.Fprintf(out, "  role:    %s\n", created.Actor.Role)
			fmt.Fprintf(out, "  api key: %s\n", created.APIKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Actor name")
	cmd.Flags().StringVar(&role, "role", "ATTENDANT", "ADMIN, ATTENDANT, RECEPTION or CLIENT")
	cmd.Flags().StringVar(&personID, "person-id", "", "Linked person id (employees and clients)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
