package main

import (
	"fmt"
	"os"

	videoify "github.com/worldEngineDev/mcap-videoify"
)

func main() {
	if err := videoify.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
