package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"grid-seq/midi"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Run: func(cmd *cobra.Command, args []string) {
		ports := midi.NewRouter().Ports()
		if len(ports) == 0 {
			fmt.Println("no MIDI output ports found")
			return
		}
		for _, p := range ports {
			fmt.Println(p)
		}
	},
}
