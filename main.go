package main

import (
	"log"

	"github.com/h2fleet/h2fleet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
