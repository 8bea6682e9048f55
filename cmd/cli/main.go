package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	client "objrepo/clients/go"
)

var (
	serverAddr   string
	hbServerAddr string
	timeout      int
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "objrepo-cli",
		Short: "objrepo - object location registry CLI",
		Long:  `objrepo-cli registers, looks up and inspects named objects held by an objrepo cluster`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "Business endpoint address")
	rootCmd.PersistentFlags().StringVar(&hbServerAddr, "hb-server", "localhost:50052", "Liveness endpoint address")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 10, "Request timeout in seconds")

	// Add subcommands
	rootCmd.AddCommand(objectCmd())
	rootCmd.AddCommand(clusterCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
}

func dialBusiness(addr string) (*client.Client, error) {
	return client.New(context.Background(), addr, "", nil)
}

func dialLiveness(addr string) (*client.Client, error) {
	return client.New(context.Background(), "", addr, nil)
}
