package main

import (
	"flag"
	"fmt"
	"os"

	"onenight/client"
)

func main() {
	name := flag.String("name", "You", "your player name")
	flag.Parse()

	if err := client.Run(*name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
