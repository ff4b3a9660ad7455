package main

import (
	"marketdata-backend/cmd/markets-cli/cmd"
)

func main() {
	cmd.Execute()
}
