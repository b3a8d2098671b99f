package main

import (
	"github.com/Laisky/tavily-mcp/cmd"
)

func main() {
	cmd.Execute()
}
