package main

import "github.com/agendateonline/agendate/cmd/agendactl/cmd"

func main() {
	cmd.Execute()
}
