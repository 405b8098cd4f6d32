package main

import (
	"context"

	"github.com/maltedev/price-registry-scraper/cmd/scraper/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
