package main

import (
	"fmt"
	"os"

	// Import to register the simulation
	_ "github.com/picogrid/drone-search-sim/cmd/drone-search/simulation"
)

func main() {
	fmt.Println("Drone Search simulation registered. Use 'drone-search run' to execute.")
	os.Exit(0)
}
