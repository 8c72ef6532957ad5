package main

import (
	"os"

	"dirscope/internal/app"
)

func main() {
	os.Exit(app.Run())
}
