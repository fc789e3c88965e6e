// Package main is the entry point for the scrubline application.
package main

import (
	"github.com/samber/lo"
	"github.com/scrubline/scrubline/cmd"
	"github.com/scrubline/scrubline/config"
	"github.com/scrubline/scrubline/internal/cache"
	"github.com/scrubline/scrubline/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cache.CollectGarbage()

	cmd.Execute()
}
