package main

import "github.com/bittyphp/bitty-security/cmd/securityd/cmd"

func main() {
	cmd.Execute()
}
