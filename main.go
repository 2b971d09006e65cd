package main

import "github.com/lumerapay/payadmin/cmd"

func main() {
	cmd.Execute()
}
