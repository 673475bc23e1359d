package main

import "pcadmin/cmd"

func main() {
	cmd.Execute()
}
