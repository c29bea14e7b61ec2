package main

import "nathanbeddoewebdev/vultrdyn/cmd"

func main() {
	cmd.Execute()
}
