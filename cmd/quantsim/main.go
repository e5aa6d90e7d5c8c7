package main

import "github.com/rustyeddy/quantsim/cmd/quantsim/cmd"

func main() {
	cmd.Execute()
}
