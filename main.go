package main

import "grid-seq/cmd"

func main() {
	cmd.Execute()
}
