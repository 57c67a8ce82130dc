package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"grid-seq/api"
	"grid-seq/midi"
)

var addrFlag string

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", ":8942", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sequencer over HTTP",
	Long:  `Runs the sequencer headless and exposes the edit/transport surface and render snapshot as a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		router := midi.NewRouter()
		engine, _ := newEngine(router)

		handler := api.NewHandler(engine)
		logger.Info("listening", "addr", addrFlag)
		if err := http.ListenAndServe(addrFlag, handler); err != nil {
			logger.Fatal("server stopped", "err", err)
		}
	},
}
