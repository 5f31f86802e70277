// main.go
package main

import (
	"log"

	"ticket-gate/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
