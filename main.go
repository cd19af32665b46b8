package main

import "github.com/oda-hub/deprecated-renku-aqs/cmd"

func main() {
	cmd.Execute()
}
