package cli

import (
	"context"
	"fmt"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/spf13/cobra"
)

type TotalCmd struct{}

func NewTotalCmd() *TotalCmd {
	return &TotalCmd{}
}

func (c *TotalCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Total delivered ports across all addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolve(cmd, engine.Request{Intent: rollout.IntentTotalPorts})
		},
	}
}

type PortsCmd struct{}

func NewPortsCmd() *PortsCmd {
	return &PortsCmd{}
}

func (c *PortsCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Delivered ports filtered by locality and months, optionally grouped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locality, err := cmd.Flags().GetString("locality")
			if err != nil {
				return fmt.Errorf("failed to get locality flag: %w", err)
			}
			months, err := cmd.Flags().GetStringSlice("month")
			if err != nil {
				return fmt.Errorf("failed to get month flag: %w", err)
			}
			groupBy, err := cmd.Flags().GetString("group-by")
			if err != nil {
				return fmt.Errorf("failed to get group-by flag: %w", err)
			}

			return resolve(cmd, engine.Request{
				Intent: rollout.IntentPorts,
				Ports: &rollout.PortsParams{
					Locality: locality,
					Months:   months,
					GroupBy:  rollout.GroupBy(groupBy),
				},
			})
		},
	}
	cmd.Flags().String("locality", "", "locality (city) name")
	cmd.Flags().StringSlice("month", nil, "month as YYYY-MM; repeat or comma-separate for several")
	cmd.Flags().String("group-by", string(rollout.GroupByNone), "grouping: none, locality, month or both")
	return cmd
}

type AddressesCmd struct{}

func NewAddressesCmd() *AddressesCmd {
	return &AddressesCmd{}
}

func (c *AddressesCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Delivered addresses, or the current status of a specific address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			locality, err := cmd.Flags().GetString("locality")
			if err != nil {
				return fmt.Errorf("failed to get locality flag: %w", err)
			}
			months, err := cmd.Flags().GetStringSlice("month")
			if err != nil {
				return fmt.Errorf("failed to get month flag: %w", err)
			}
			search, err := cmd.Flags().GetString("search")
			if err != nil {
				return fmt.Errorf("failed to get search flag: %w", err)
			}

			return resolve(cmd, engine.Request{
				Intent: rollout.IntentDeliveredAddresses,
				Address: &rollout.AddressParams{
					Locality:      locality,
					Months:        months,
					AddressSearch: search,
				},
			})
		},
	}
	cmd.Flags().String("locality", "", "locality (city) name")
	cmd.Flags().StringSlice("month", nil, "month as YYYY-MM; repeat or comma-separate for several")
	cmd.Flags().String("search", "", "street and building to look up, e.g. \"Сарайшык 4\"")
	return cmd
}

type StatusCmd struct{}

func NewStatusCmd() *StatusCmd {
	return &StatusCmd{}
}

func (c *StatusCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Project status by SMR: delivered, in progress and excluded objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolve(cmd, engine.Request{Intent: rollout.IntentObjectsStatus})
		},
	}
}

func resolve(cmd *cobra.Command, req engine.Request) error {
	return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
		return printOutcome(cmd, rt.engine.Resolve(ctx, req))
	})
}
