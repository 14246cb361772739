package main

import (
	"context"

	"ssotica-backend/cmd/parcelas-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
