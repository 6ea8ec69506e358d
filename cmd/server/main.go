package main

import "github.com/alecthomas/kong"

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("foodswho"),
		kong.Description("FOOD'sWho restaurant discovery service."))
	err := ctx.Run(&Context{Debug: CLI.Debug})
	ctx.FatalIfErrorf(err)
}
