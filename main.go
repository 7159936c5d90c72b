package main

import "github.com/KaramelBytes/salespulse/cmd"

func main() {
	cmd.Execute()
}
