package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"

	"objrepo/api/registrypb"
)

func objectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "object",
		Aliases: []string{"obj"},
		Short:   "Object registry operations",
		Long:    "Register, update, look up and remove named objects",
	}

	cmd.AddCommand(objectRegisterCmd())
	cmd.AddCommand(objectUpdateCmd())
	cmd.AddCommand(objectDeregisterCmd())
	cmd.AddCommand(objectGetCmd())
	cmd.AddCommand(objectListCmd())
	cmd.AddCommand(objectHeartbeatCmd())
	cmd.AddCommand(objectSyncCmd())

	return cmd
}

type objectFlags struct {
	language string
	version  string
	region   string
}

func (f *objectFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.language, "language", "", "Implementation language")
	cmd.Flags().StringVar(&f.version, "version", "", "Object version")
	cmd.Flags().StringVar(&f.region, "region", "", "Deployment region")
}

func objectRegisterCmd() *cobra.Command {
	var f objectFlags

	cmd := &cobra.Command{
		Use:   "register <name> <address>",
		Short: "Register an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialBusiness(serverAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			resp, err := c.Registry.RegisterObject(ctx, &registrypb.RegisterRequest{
				ObjectName:    args[0],
				ObjectAddress: args[1],
				Language:      f.language,
				Version:       f.version,
				Region:        f.region,
			})
			if err != nil {
				return err
			}
			printResult(resp.Success)
			return nil
		},
	}
	f.bind(cmd)

	return cmd
}

func objectUpdateCmd() *cobra.Command {
	var f objectFlags

	cmd := &cobra.Command{
		Use:   "update <name> <address>",
		Short: "Update an object, registering it if absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialBusiness(serverAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			resp, err := c.Registry.UpdateObject(ctx, &registrypb.UpdateRequest{
				ObjectName:    args[0],
				ObjectAddress: args[1],
				Language:      f.language,
				Version:       f.version,
				Region:        f.region,
			})
			if err != nil {
				return err
			}
			printResult(resp.Success)
			return nil
		},
	}
	f.bind(cmd)

	return cmd
}

func objectDeregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deregister <name>",
		Short: "Remove an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialBusiness(serverAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			resp, err := c.Registry.DeregisterObject(ctx, &registrypb.DeregisterRequest{ObjectName: args[0]})
			if err != nil {
				return err
			}
			printResult(resp.Success)
			return nil
		},
	}
}

func objectGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Look up an object's address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialBusiness(serverAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			resp, err := c.Registry.GetObject(ctx, &registrypb.GetRequest{ObjectName: args[0]})
			if err != nil {
				return err
			}
			if resp.ObjectAddress == "" {
				fmt.Println("(nil)")
			} else {
				fmt.Println(resp.ObjectAddress)
			}
			return nil
		},
	}
}

func objectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registered objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialBusiness(serverAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			resp, err := c.Registry.ListObjects(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			if len(resp.Objects) == 0 {
				fmt.Println("(empty list)")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tADDRESS\tLANGUAGE\tVERSION\tREGION")
			for _, o := range resp.Objects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ObjectName, o.ObjectAddress, o.Language, o.Version, o.Region)
			}
			return w.Flush()
		},
	}
}

func objectHeartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat <name>",
		Short: "Refresh an object's last-seen time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialBusiness(serverAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			resp, err := c.Registry.Heartbeat(ctx, &registrypb.HeartbeatPing{ObjectName: args[0]})
			if err != nil {
				return err
			}
			if resp.Ok {
				fmt.Println("OK")
			} else {
				fmt.Println("Error: object not registered")
			}
			return nil
		},
	}
}

// objectSyncCmd copies one replica's listing into another via SyncState.
func objectSyncCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push a replica's objects to another replica",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = serverAddr
			}
			if to == "" {
				return fmt.Errorf("--to is required")
			}

			src, err := dialBusiness(from)
			if err != nil {
				return err
			}
			defer src.Close()
			dst, err := dialBusiness(to)
			if err != nil {
				return err
			}
			defer dst.Close()

			ctx, cancel := requestContext()
			defer cancel()

			list, err := src.Registry.ListObjects(ctx, &emptypb.Empty{})
			if err != nil {
				return fmt.Errorf("list %s: %w", from, err)
			}
			if _, err := dst.Registry.SyncState(ctx, list); err != nil {
				return fmt.Errorf("sync to %s: %w", to, err)
			}
			fmt.Printf("Synced %d objects from %s to %s\n", len(list.Objects), from, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source business endpoint (defaults to --server)")
	cmd.Flags().StringVar(&to, "to", "", "Target business endpoint")

	return cmd
}

func printResult(ok bool) {
	if ok {
		fmt.Println("OK")
	} else {
		fmt.Println("Error: request rejected")
	}
}
