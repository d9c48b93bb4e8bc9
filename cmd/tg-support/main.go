package main

import (
	"log"

	"github.com/aischooloff-pixel/boys-hub-pr2/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
