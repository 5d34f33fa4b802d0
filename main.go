package main

import (
	cmd "github.com/testvox/testvox/cmd/testvox"
)

func main() {
	cmd.Execute()
}
