package main

import "gophregister/cmd/client/cmd"

func main() {
	cmd.Execute()
}
