package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func clusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster operations",
		Long:  "Inspect replica liveness and leadership",
	}

	cmd.AddCommand(clusterPingCmd())
	cmd.AddCommand(clusterUptimeCmd())

	return cmd
}

func clusterPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the replica is currently primary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialLiveness(hbServerAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			_, err = c.Heartbeat.Ping(ctx, &emptypb.Empty{})
			switch status.Code(err) {
			case codes.OK:
				fmt.Println("PRIMARY")
			case codes.Unavailable:
				fmt.Println("BACKUP or unreachable:", status.Convert(err).Message())
			default:
				return err
			}
			return nil
		},
	}
}

func clusterUptimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uptime",
		Short: "Get the replica's node id and uptime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialLiveness(hbServerAddr)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := requestContext()
			defer cancel()

			info, err := c.Heartbeat.GetUptime(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			fmt.Printf("Node: %s\n", info.NodeID)
			fmt.Printf("Uptime: %ds\n", info.UptimeSec)
			return nil
		},
	}
}
