package main

import (
	"healthchain/internal/cli"
)

func main() {
	cli.Execute()
}
