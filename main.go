package main

import "github.com/darmiel/wifctl/cmd"

func main() {
	cmd.Execute()
}
