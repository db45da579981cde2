package main

import (
	"log"

	"github.com/repairhub/workshop-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
