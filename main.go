package main

import (
	"os"

	"github.com/evocms-community/evo-authz/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
