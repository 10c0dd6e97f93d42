package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/fleethub-io/fleethub/cmd/fleethub/app"
)

func main() {
	if err := app.NewApp().Run(); err != nil {
		os.Exit(1)
	}
}
