/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/agrolink/apiserver/config"
	"github.com/agrolink/apiserver/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the AgroLink backend server",
	Long: `Starts the AgroLink backend server. Usage:

	agrolink server
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		srv, err := server.New(cmd.Context(), cfg)
		if err != nil {
			logrus.Fatalf("failed to start server: %v", err)
		}
		logrus.Infof("listening on :%d", cfg.ServerPort)
		if err := srv.Start(); err != nil {
			logrus.Fatalf("server error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
