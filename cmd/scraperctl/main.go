package main

import (
	"os"

	"github.com/pistole/scraper-parser/cmd/scraperctl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
